// idgen.go
package idgen

import (
	"fmt"
	"math/rand"
	"time"
)

const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// OrderNumber arma ORD-NNNNN a partir del conteo actual de órdenes.
// El conteo no es atómico: la unicidad real la garantiza el índice
// único de Mongo, con reintento en caso de colisión.
func OrderNumber(count int64) string {
	return fmt.Sprintf("ORD-%05d", count+1)
}

// TrackingNumber: 2 letras + 9 dígitos + 2 letras.
func TrackingNumber() string {
	b := make([]byte, 13)
	b[0] = letters[rand.Intn(26)]
	b[1] = letters[rand.Intn(26)]
	for i := 2; i < 11; i++ {
		b[i] = byte('0' + rand.Intn(10))
	}
	b[11] = letters[rand.Intn(26)]
	b[12] = letters[rand.Intn(26)]
	return string(b)
}

// ReceiptID: RCP- + 6 dígitos.
func ReceiptID() string {
	return fmt.Sprintf("RCP-%06d", rand.Intn(1000000))
}

// EstimatedDelivery: entre 5 y 7 días desde la creación.
func EstimatedDelivery(now time.Time) time.Time {
	days := 5 + rand.Intn(3)
	return now.AddDate(0, 0, days)
}
