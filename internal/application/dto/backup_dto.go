package dto

import "time"

// BackupInfo respaldo del archivo de datos junto a su metadata.
type BackupInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum"` // sha256 hex
}
