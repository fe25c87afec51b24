package sales_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/vento-pos/internal/application/sales"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptSequence_Formato(t *testing.T) {
	seq := sales.NewReceiptSequence(9)
	day := time.Date(2025, 1, 2, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, "REC-20250102-0010", seq.Next(day))
	assert.Equal(t, "REC-20250102-0011", seq.Next(day))
}

func TestReceiptSequence_ConcurrenteSinRepetidos(t *testing.T) {
	seq := sales.NewReceiptSequence(0)
	const n = 200
	out := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out <- seq.Next(testNow)
		}()
	}
	wg.Wait()
	close(out)

	seen := map[string]bool{}
	for r := range out {
		assert.False(t, seen[r], "recibo repetido %s", r)
		seen[r] = true
	}
	assert.Len(t, seen, n)
}

func TestParseReceiptCounter(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"REC-20240315-0042", 42, true},
		{"REC-20240315-12345", 12345, true},
		{"", 0, false},
		{"FAC-20240315-0001", 0, false},
		{"REC-2024-0001", 0, false},
		{"REC-20240315-abc", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			n, ok := sales.ParseReceiptCounter(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, n)
		})
	}
}

func TestSeedReceiptSequence_ContinuaDesdeUltimaVenta(t *testing.T) {
	ctx := context.Background()
	repo := newMemSales()
	l := sales.NewLedger(repo, sales.NewReceiptSequence(6), fixedClock)
	require.NoError(t, l.Save(ctx, newSale(item(1, "2.00", 1))))

	seq, err := sales.SeedReceiptSequence(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, "REC-20240315-0008", seq.Next(testNow))

	empty, err := sales.SeedReceiptSequence(ctx, newMemSales())
	require.NoError(t, err)
	assert.Equal(t, "REC-20240315-0001", empty.Next(testNow))
}
