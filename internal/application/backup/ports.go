package backup

import "context"

// Snapshotter escribe en dest una copia consistente de la base en uso.
// dest no debe existir.
type Snapshotter interface {
	Snapshot(ctx context.Context, dest string) error
}
