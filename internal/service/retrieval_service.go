package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"order-lifecycle-service/internal/model"
)

type FallbackStore interface {
	Write(userID string, summaries []model.OrderSummary) error
	Read(userID string) (*model.FallbackSnapshot, error)
}

type SummaryCache interface {
	Get(key string) ([]model.OrderSummary, bool)
	Set(key string, summaries []model.OrderSummary)
}

var ErrNoOrders = errors.New("no orders found")

type OrdersResult struct {
	Orders            []model.Order
	Summaries         []model.OrderSummary
	FromFallback      bool
	FallbackTimestamp time.Time
	QueryTime         time.Duration
}

type LightResult struct {
	Summaries         []model.OrderSummary
	FromFallback      bool
	FallbackTimestamp time.Time
	FromCache         bool
	ProcessingTime    time.Duration
}

// RetrievalService responde "mis órdenes" con latencia acotada: corre la
// consulta a Mongo contra un timeout fijo y, si el primario pierde, falla
// o viene vacío, cae al snapshot en disco.
type RetrievalService struct {
	repo     OrderRepository
	fallback FallbackStore
	cache    SummaryCache
	timeout  time.Duration
}

func NewRetrievalService(repo OrderRepository, fb FallbackStore, cache SummaryCache, timeout time.Duration) *RetrievalService {
	return &RetrievalService{repo: repo, fallback: fb, cache: cache, timeout: timeout}
}

type fullQuery struct {
	orders []model.Order
	err    error
}

type lightQuery struct {
	summaries []model.OrderSummary
	err       error
}

// GetOrdersForUser devuelve las órdenes completas del usuario, por
// identificador canónico o por email (cubre compras como invitado).
func (s *RetrievalService) GetOrdersForUser(ctx context.Context, userID, email string) (*OrdersResult, error) {
	start := time.Now()

	// El canal tiene buffer 1: si gana el timeout, el perdedor no queda
	// bloqueado y su resultado se drena aparte. No se cancela la consulta:
	// si llega tarde solo sirve para refrescar el snapshot.
	ch := make(chan fullQuery, 1)
	go func() {
		orders, err := s.repo.FindByUserOrEmail(context.Background(), userID, email)
		ch <- fullQuery{orders: orders, err: err}
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.err == nil && len(res.orders) > 0 {
			s.refreshSnapshot(userID, model.SummarizeAll(res.orders))
			return &OrdersResult{Orders: res.orders, QueryTime: time.Since(start)}, nil
		}
		if res.err != nil {
			log.Warn().Err(res.err).Str("user", userID).Msg("consulta primaria falló, usando respaldo")
		}
	case <-timer.C:
		log.Warn().Str("user", userID).Dur("timeout", s.timeout).Msg("consulta primaria lenta, usando respaldo")
		go s.drainLate(userID, ch)
	}

	return s.fromFallback(userID, start)
}

// GetLightOrders es la variante liviana: primero el cache TTL, después la
// misma carrera contra el timeout pero con la consulta proyectada.
func (s *RetrievalService) GetLightOrders(ctx context.Context, userID, email string) (*LightResult, error) {
	start := time.Now()

	if cached, ok := s.cache.Get(userID); ok {
		return &LightResult{
			Summaries:      cached,
			FromCache:      true,
			ProcessingTime: time.Since(start),
		}, nil
	}

	ch := make(chan lightQuery, 1)
	go func() {
		summaries, err := s.repo.FindSummaries(context.Background(), userID, email)
		ch <- lightQuery{summaries: summaries, err: err}
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.err == nil && len(res.summaries) > 0 {
			s.cache.Set(userID, res.summaries)
			s.refreshSnapshot(userID, res.summaries)
			return &LightResult{Summaries: res.summaries, ProcessingTime: time.Since(start)}, nil
		}
		if res.err != nil {
			log.Warn().Err(res.err).Str("user", userID).Msg("consulta liviana falló, usando respaldo")
		}
	case <-timer.C:
		log.Warn().Str("user", userID).Dur("timeout", s.timeout).Msg("consulta liviana lenta, usando respaldo")
		go func() {
			res := <-ch
			if res.err == nil && len(res.summaries) > 0 {
				s.refreshSnapshot(userID, res.summaries)
			}
		}()
	}

	snap, err := s.lightFallback(userID)
	if err != nil {
		return nil, err
	}
	snap.ProcessingTime = time.Since(start)
	return snap, nil
}

// TrackOrder busca por número de seguimiento o de orden. La proyección
// pública la recorta el controller.
func (s *RetrievalService) TrackOrder(ctx context.Context, number string) (*model.Order, error) {
	return s.repo.FindByTrackingOrNumber(ctx, number)
}

// refreshSnapshot es oportunista: si falla, se loguea y listo.
func (s *RetrievalService) refreshSnapshot(userID string, summaries []model.OrderSummary) {
	if userID == "" {
		return
	}
	if err := s.fallback.Write(userID, summaries); err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("no se pudo refrescar el snapshot de respaldo")
	}
}

// drainLate espera el resultado del perdedor. Lo único que puede hacer a
// esta altura es refrescar el snapshot: la respuesta ya salió.
func (s *RetrievalService) drainLate(userID string, ch <-chan fullQuery) {
	res := <-ch
	if res.err == nil && len(res.orders) > 0 {
		s.refreshSnapshot(userID, model.SummarizeAll(res.orders))
	}
}

func (s *RetrievalService) fromFallback(userID string, start time.Time) (*OrdersResult, error) {
	snap, err := s.fallback.Read(userID)
	if err != nil {
		return nil, ErrNoOrders
	}
	return &OrdersResult{
		Summaries:         snap.Orders,
		FromFallback:      true,
		FallbackTimestamp: snap.CapturedAt,
		QueryTime:         time.Since(start),
	}, nil
}

func (s *RetrievalService) lightFallback(userID string) (*LightResult, error) {
	snap, err := s.fallback.Read(userID)
	if err != nil {
		return nil, ErrNoOrders
	}
	return &LightResult{
		Summaries:         snap.Orders,
		FromFallback:      true,
		FallbackTimestamp: snap.CapturedAt,
	}, nil
}
