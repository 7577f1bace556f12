// store.go
package fallback

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"

	"order-lifecycle-service/internal/model"
)

var ErrNoSnapshot = errors.New("no hay snapshot para el usuario")

// MaxOrdersPerUser limita cuántos resúmenes se guardan por usuario.
const MaxOrdersPerUser = 10

// Store guarda en un único archivo JSON un mapa usuario → snapshot.
// Es un cache degradado: se pisa entero en cada lectura exitosa del
// store primario y solo se lee cuando el primario falla. Borrar el
// archivo equivale a no tener respaldo de nadie.
//
// El mutex cubre el read-modify-write dentro del proceso. Entre
// procesos es last-writer-wins, decisión documentada en DESIGN.md.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

type fileEntry struct {
	Timestamp time.Time            `json:"timestamp"`
	Orders    []model.OrderSummary `json:"orders"`
}

func (s *Store) load() (map[string]fileEntry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			// archivo ausente == sin datos de respaldo
			return map[string]fileEntry{}, nil
		}
		return nil, err
	}
	out := map[string]fileEntry{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Write pisa el snapshot del usuario con los resúmenes más recientes.
func (s *Store) Write(userID string, summaries []model.OrderSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return err
	}

	if len(summaries) > MaxOrdersPerUser {
		summaries = summaries[:MaxOrdersPerUser]
	}
	all[userID] = fileEntry{
		Timestamp: time.Now().UTC(),
		Orders:    summaries,
	}

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// Read devuelve el snapshot del usuario o ErrNoSnapshot.
func (s *Store) Read(userID string) (*model.FallbackSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return nil, err
	}
	entry, ok := all[userID]
	if !ok {
		return nil, ErrNoSnapshot
	}
	return &model.FallbackSnapshot{
		UserID:     userID,
		CapturedAt: entry.Timestamp,
		Orders:     entry.Orders,
	}, nil
}
