package backup_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbackup "github.com/jhoicas/vento-pos/internal/application/backup"
	"github.com/jhoicas/vento-pos/internal/application/dto"
	"github.com/jhoicas/vento-pos/internal/domain/entity"
	"github.com/jhoicas/vento-pos/internal/infrastructure/backup"
	"github.com/jhoicas/vento-pos/internal/infrastructure/sqlite"
	"github.com/jhoicas/vento-pos/pkg/logger"
)

func TestSQLiteSnapshotter_CopiaConsistente(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db, err := sqlite.Open(ctx, filepath.Join(dir, "vento.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(db) })

	p := entity.NewProduct("Harina PAN", decimal.RequireFromString("1.00"), 12)
	p.ApplyExchangeRate(decimal.RequireFromString("36.50"))
	require.NoError(t, sqlite.NewProductRepository(db).Create(ctx, p))

	uc := appbackup.NewUseCase(backup.NewSQLiteSnapshotter(db), filepath.Join(dir, "backups"), logger.Nop())
	info, err := uc.Create(ctx, "cierre")
	require.NoError(t, err)
	assert.Positive(t, info.Size)

	copyDB, err := sqlite.Open(ctx, info.Path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(copyDB) })

	got, err := sqlite.NewProductRepository(copyDB).GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Harina PAN", got.Name)
	assert.Equal(t, 12, got.StockQuantity)
}

type fakeJob struct {
	created   int
	keptAt    []int
	createErr error
}

func (f *fakeJob) Create(_ context.Context, name string) (*dto.BackupInfo, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created++
	return &dto.BackupInfo{Name: "vento_backup_auto"}, nil
}

func (f *fakeJob) Cleanup(_ context.Context, keep int) (int, error) {
	f.keptAt = append(f.keptAt, keep)
	return 0, nil
}

func TestScheduler_ExpresionInvalida(t *testing.T) {
	_, err := backup.NewScheduler(&fakeJob{}, "cada rato", 7, time.UTC, logger.Nop())
	assert.Error(t, err)
}

func TestScheduler_RunOnce(t *testing.T) {
	job := &fakeJob{}
	s, err := backup.NewScheduler(job, "@daily", 7, time.UTC, logger.Nop())
	require.NoError(t, err)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, 1, job.created)
	assert.Equal(t, []int{7}, job.keptAt)
}

func TestScheduler_SinDepuracion(t *testing.T) {
	job := &fakeJob{}
	s, err := backup.NewScheduler(job, "0 3 * * *", 0, time.UTC, logger.Nop())
	require.NoError(t, err)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Empty(t, job.keptAt)
}

func TestScheduler_FalloDelRespaldoNoDepura(t *testing.T) {
	job := &fakeJob{createErr: errors.New("disco lleno")}
	s, err := backup.NewScheduler(job, "@every 6h", 3, time.UTC, logger.Nop())
	require.NoError(t, err)

	assert.Error(t, s.RunOnce(context.Background()))
	assert.Empty(t, job.keptAt)
}

func TestScheduler_StartStop(t *testing.T) {
	s, err := backup.NewScheduler(&fakeJob{}, "@daily", 7, time.UTC, logger.Nop())
	require.NoError(t, err)

	s.Start()
	assert.True(t, s.Next().After(time.Now()))
	s.Stop()
}
