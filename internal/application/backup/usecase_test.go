package backup_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/vento-pos/internal/application/backup"
	"github.com/jhoicas/vento-pos/internal/domain"
	"github.com/jhoicas/vento-pos/pkg/logger"
)

// fileSnapshotter escribe un contenido fijo; err simula una copia fallida.
type fileSnapshotter struct {
	content string
	err     error
	calls   int
}

func (f *fileSnapshotter) Snapshot(_ context.Context, dest string) error {
	f.calls++
	if err := os.WriteFile(dest, []byte(f.content), 0o600); err != nil {
		return err
	}
	return f.err
}

type fixture struct {
	uc   *backup.UseCase
	snap *fileSnapshotter
	dir  string
	now  *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2024, 3, 15, 22, 30, 0, 0, time.UTC)
	f := &fixture{snap: &fileSnapshotter{content: "SQLite format 3"}, dir: filepath.Join(t.TempDir(), "backups"), now: &now}
	f.uc = backup.NewUseCase(f.snap, f.dir, logger.Nop()).WithClock(func() time.Time { return *f.now })
	return f
}

func (f *fixture) tick(d time.Duration) { *f.now = f.now.Add(d) }

func TestCreate_NombrePorDefectoYChecksum(t *testing.T) {
	f := newFixture(t)

	info, err := f.uc.Create(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "vento_backup_20240315_223000", info.Name)
	assert.Equal(t, filepath.Join(f.dir, "vento_backup_20240315_223000.db"), info.Path)
	assert.Equal(t, int64(len("SQLite format 3")), info.Size)
	assert.Len(t, info.Checksum, 64)
	assert.Len(t, info.ID, 36)
	assert.FileExists(t, filepath.Join(f.dir, "vento_backup_20240315_223000.meta"))

	ok, err := f.uc.Verify(context.Background(), info.Path)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreate_NombreInvalidoODuplicado(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Create(context.Background(), "../fuera")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = f.uc.Create(context.Background(), "cierre")
	require.NoError(t, err)
	_, err = f.uc.Create(context.Background(), "cierre")
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Equal(t, 1, f.snap.calls)
}

func TestCreate_FalloDelSnapshotNoDejaArchivos(t *testing.T) {
	f := newFixture(t)
	f.snap.err = errors.New("database is locked")

	_, err := f.uc.Create(context.Background(), "roto")
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(f.dir, "roto.db"))

	list, err := f.uc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestList_OrdenYSinMetadata(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, "a")
	require.NoError(t, err)
	f.tick(time.Hour)
	_, err = f.uc.Create(ctx, "b")
	require.NoError(t, err)
	// copia manual sin .meta
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "manual.db"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "notas.txt"), []byte("x"), 0o600))

	list, err := f.uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	names := map[string]bool{}
	for _, b := range list {
		names[b.Name] = true
	}
	assert.True(t, names["manual"])
	// entre los que tienen metadata, b es más reciente que a
	var ia, ib int
	for i, b := range list {
		switch b.Name {
		case "a":
			ia = i
		case "b":
			ib = i
		}
	}
	assert.Less(t, ib, ia)
}

func TestList_DirectorioInexistente(t *testing.T) {
	f := newFixture(t)
	list, err := f.uc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCleanup_ConservaLosMasRecientes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, name := range []string{"d1", "d2", "d3", "d4"} {
		_, err := f.uc.Create(ctx, name)
		require.NoError(t, err)
		f.tick(24 * time.Hour)
	}

	deleted, err := f.uc.Cleanup(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	list, err := f.uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "d4", list[0].Name)
	assert.Equal(t, "d3", list[1].Name)
	assert.NoFileExists(t, filepath.Join(f.dir, "d1.meta"))

	_, err = f.uc.Cleanup(ctx, 0)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	info, err := f.uc.Create(ctx, "borrar")
	require.NoError(t, err)

	require.NoError(t, f.uc.Delete(ctx, "borrar"))
	assert.NoFileExists(t, info.Path)
	assert.NoFileExists(t, filepath.Join(f.dir, "borrar.meta"))

	assert.ErrorIs(t, f.uc.Delete(ctx, "borrar"), domain.ErrNotFound)

	err = f.uc.Delete(ctx, filepath.Join(t.TempDir(), "otro.db"))
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestVerify_DetectaAlteracion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	info, err := f.uc.Create(ctx, "v")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(info.Path, []byte("alterado"), 0o600))
	ok, err := f.uc.Verify(ctx, info.Path)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "suelto.db"), []byte("x"), 0o600))
	_, err = f.uc.Verify(ctx, "suelto")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
