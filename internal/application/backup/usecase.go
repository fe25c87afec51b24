// Package backup administra los respaldos del archivo de datos: creación con
// checksum, listado, verificación y depuración de los más antiguos.
package backup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/jhoicas/vento-pos/internal/application/dto"
	"github.com/jhoicas/vento-pos/internal/domain"
	"github.com/jhoicas/vento-pos/pkg/logger"
)

const (
	fileExt     = ".db"
	metaExt     = ".meta"
	namePrefix  = "vento_backup_"
	stampLayout = "20060102_150405"
)

// UseCase respaldos en un directorio: <nombre>.db y su metadata <nombre>.meta.
type UseCase struct {
	snap Snapshotter
	dir  string
	log  *logger.Logger
	now  func() time.Time
}

// NewUseCase construye el caso de uso sobre dir.
func NewUseCase(snap Snapshotter, dir string, log *logger.Logger) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{snap: snap, dir: dir, log: log.Component("backup"), now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// Dir directorio de respaldos.
func (uc *UseCase) Dir() string { return uc.dir }

// Create genera un respaldo. name vacío usa vento_backup_YYYYMMDD_HHMMSS.
func (uc *UseCase) Create(ctx context.Context, name string) (*dto.BackupInfo, error) {
	now := uc.now()
	name = strings.TrimSpace(name)
	if name == "" {
		name = namePrefix + now.Format(stampLayout)
	}
	if err := validName(name); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(uc.dir, 0o700); err != nil {
		return nil, fmt.Errorf("backup: crear directorio: %w", err)
	}

	dest := filepath.Join(uc.dir, name+fileExt)
	if _, err := os.Stat(dest); err == nil {
		return nil, fmt.Errorf("%w: ya existe el respaldo %q", domain.ErrDuplicate, name)
	}
	if err := uc.snap.Snapshot(ctx, dest); err != nil {
		_ = os.Remove(dest)
		uc.log.Error().Err(err).Str("name", name).Msg("respaldo fallido")
		return nil, fmt.Errorf("backup: snapshot: %w", err)
	}

	sum, size, err := checksum(dest)
	if err != nil {
		_ = os.Remove(dest)
		return nil, err
	}
	info := &dto.BackupInfo{
		ID:        uuid.NewString(),
		Name:      name,
		Path:      dest,
		CreatedAt: now,
		Size:      size,
		Checksum:  sum,
	}
	if err := writeMeta(info); err != nil {
		_ = os.Remove(dest)
		return nil, err
	}

	uc.log.Info().
		Str("name", name).
		Str("path", dest).
		Int64("size", size).
		Msg("respaldo creado")
	return info, nil
}

// List respaldos del directorio, del más reciente al más antiguo.
// Un .db sin metadata se lista con los datos del archivo.
func (uc *UseCase) List(_ context.Context) ([]dto.BackupInfo, error) {
	entries, err := os.ReadDir(uc.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []dto.BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("backup: leer directorio: %w", err)
	}

	out := make([]dto.BackupInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != fileExt {
			continue
		}
		path := filepath.Join(uc.dir, e.Name())
		info, err := readMeta(path)
		if err != nil {
			fi, statErr := e.Info()
			if statErr != nil {
				continue
			}
			info = &dto.BackupInfo{
				Name:      strings.TrimSuffix(e.Name(), fileExt),
				Path:      path,
				CreatedAt: fi.ModTime(),
				Size:      fi.Size(),
			}
		}
		out = append(out, *info)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Name > out[j].Name
	})
	return out, nil
}

// Cleanup conserva los keep respaldos más recientes y borra el resto. Devuelve cuántos borró.
func (uc *UseCase) Cleanup(ctx context.Context, keep int) (int, error) {
	if keep < 1 {
		return 0, domain.NewValidationError("keep", "debe conservarse al menos un respaldo")
	}
	all, err := uc.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(all) <= keep {
		return 0, nil
	}

	var errs error
	deleted := 0
	for _, b := range all[keep:] {
		if err := removeBackup(b.Path); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		deleted++
	}
	uc.log.Info().Int("deleted", deleted).Int("keep", keep).Msg("respaldos depurados")
	return deleted, errs
}

// Delete borra un respaldo del directorio y su metadata.
func (uc *UseCase) Delete(_ context.Context, path string) error {
	path, err := uc.inDir(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: respaldo %s", domain.ErrNotFound, filepath.Base(path))
	}
	if err := removeBackup(path); err != nil {
		return err
	}
	uc.log.Info().Str("path", path).Msg("respaldo eliminado")
	return nil
}

// Verify compara el checksum actual del archivo con el de su metadata.
func (uc *UseCase) Verify(_ context.Context, path string) (bool, error) {
	path, err := uc.inDir(path)
	if err != nil {
		return false, err
	}
	info, err := readMeta(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, fmt.Errorf("%w: metadata de %s", domain.ErrNotFound, filepath.Base(path))
		}
		return false, err
	}
	sum, _, err := checksum(path)
	if err != nil {
		return false, err
	}
	return sum == info.Checksum, nil
}

// inDir admite un nombre o una ruta; siempre debe resolver a un .db dentro de dir.
func (uc *UseCase) inDir(path string) (string, error) {
	if !strings.ContainsRune(path, filepath.Separator) {
		path = filepath.Join(uc.dir, path)
	}
	if filepath.Ext(path) != fileExt {
		path += fileExt
	}
	absDir, err := filepath.Abs(uc.dir)
	if err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	if filepath.Dir(absPath) != absDir {
		return "", domain.NewValidationError("path", "el respaldo no pertenece al directorio de respaldos")
	}
	return path, nil
}

func validName(name string) error {
	if strings.ContainsAny(name, `/\:*?"<>|`) || name == "." || name == ".." {
		return domain.NewValidationError("name", "nombre de respaldo inválido")
	}
	return nil
}

func checksum(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("backup: abrir %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("backup: checksum: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

func metaPath(path string) string {
	return strings.TrimSuffix(path, fileExt) + metaExt
}

func writeMeta(info *dto.BackupInfo) error {
	b, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("backup: metadata: %w", err)
	}
	if err := os.WriteFile(metaPath(info.Path), b, 0o600); err != nil {
		return fmt.Errorf("backup: escribir metadata: %w", err)
	}
	return nil
}

func readMeta(path string) (*dto.BackupInfo, error) {
	b, err := os.ReadFile(metaPath(path))
	if err != nil {
		return nil, err
	}
	var info dto.BackupInfo
	if err := json.Unmarshal(b, &info); err != nil {
		return nil, fmt.Errorf("backup: metadata corrupta %s: %w", filepath.Base(path), err)
	}
	info.Path = path
	return &info, nil
}

func removeBackup(path string) error {
	var errs error
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		errs = multierr.Append(errs, fmt.Errorf("borrar %s: %w", filepath.Base(path), err))
	}
	if err := os.Remove(metaPath(path)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		errs = multierr.Append(errs, fmt.Errorf("borrar metadata %s: %w", filepath.Base(path), err))
	}
	return errs
}
