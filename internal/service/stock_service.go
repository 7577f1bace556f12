package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"order-lifecycle-service/internal/model"
)

type StockService struct {
	products ProductRepository
}

func NewStockService(products ProductRepository) *StockService {
	return &StockService{products: products}
}

// ApplyStockReductions descuenta stock por ítem, cada uno por su cuenta.
// Que falle un producto no frena a los demás, y nada de esto es
// transaccional con la creación de la orden: el parcial se acepta y se
// reporta. El stock nunca baja de cero.
func (s *StockService) ApplyStockReductions(ctx context.Context, items []model.OrderItem) model.StockReport {
	report := model.StockReport{Attempted: len(items)}

	for _, it := range items {
		adj := model.StockAdjustment{
			ProductID: it.ProductID,
			Name:      it.Name,
			Reduction: it.Quantity,
		}

		product, err := s.products.FindByID(ctx, it.ProductID)
		if err != nil {
			adj.Error = "product not found"
			log.Warn().Err(err).Str("product", it.ProductID).Msg("producto no encontrado al descontar stock")
			report.Results = append(report.Results, adj)
			continue
		}

		adj.Name = product.Name
		adj.PreviousStock = product.Stock

		if product.Stock <= 0 {
			adj.NewStock = product.Stock
			adj.Error = "insufficient stock"
			report.Results = append(report.Results, adj)
			continue
		}

		newStock := product.Stock - it.Quantity
		if newStock < 0 {
			newStock = 0
		}
		if err := s.products.UpdateStock(ctx, product.ID, newStock); err != nil {
			adj.Error = "stock update failed"
			log.Warn().Err(err).Str("product", it.ProductID).Msg("no se pudo actualizar el stock")
			report.Results = append(report.Results, adj)
			continue
		}

		adj.NewStock = newStock
		report.Results = append(report.Results, adj)
		report.Succeeded++
	}

	return report
}
