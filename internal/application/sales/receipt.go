package sales

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/vento-pos/internal/domain/repository"
)

const receiptPrefix = "REC-"

// ReceiptSequence contador monótono de recibos, seguro para uso concurrente.
type ReceiptSequence struct {
	mu   sync.Mutex
	last int
}

var _ ReceiptNumberer = (*ReceiptSequence)(nil)

// NewReceiptSequence inicia la secuencia; el próximo número será last+1.
func NewReceiptSequence(last int) *ReceiptSequence {
	return &ReceiptSequence{last: last}
}

// SeedReceiptSequence continúa la numeración a partir de la última venta guardada,
// así un reinicio del proceso no repite números de recibo.
func SeedReceiptSequence(ctx context.Context, repo repository.SaleRepository) (*ReceiptSequence, error) {
	latest, err := repo.LatestReceiptNumber(ctx)
	if err != nil {
		return nil, err
	}
	n, _ := ParseReceiptCounter(latest)
	return NewReceiptSequence(n), nil
}

// Next devuelve REC-YYYYMMDD-NNNN con la fecha local de at.
func (s *ReceiptSequence) Next(at time.Time) string {
	s.mu.Lock()
	s.last++
	n := s.last
	s.mu.Unlock()
	return fmt.Sprintf("%s%s-%04d", receiptPrefix, at.Format("20060102"), n)
}

// ParseReceiptCounter extrae el contador de un número de recibo; ok=false si el formato no coincide.
func ParseReceiptCounter(receipt string) (int, bool) {
	if !strings.HasPrefix(receipt, receiptPrefix) {
		return 0, false
	}
	parts := strings.Split(strings.TrimPrefix(receipt, receiptPrefix), "-")
	if len(parts) != 2 || len(parts[0]) != 8 {
		return 0, false
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
