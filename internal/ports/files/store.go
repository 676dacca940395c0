package files

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

type Kind string

const (
	KindAnimal           Kind = "animal"
	KindAdoptionDocument Kind = "adoption_document"
	KindAbusePhoto       Kind = "abuse_photo"
	KindAbuseVideo       Kind = "abuse_video"
	KindMessageImage     Kind = "message_image"
	KindMessageVideo     Kind = "message_video"
	KindProfilePhoto     Kind = "profile_photo"
)

func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case KindAnimal, KindAdoptionDocument, KindAbusePhoto, KindAbuseVideo,
		KindMessageImage, KindMessageVideo, KindProfilePhoto:
		return k, true
	default:
		return "", false
	}
}

// Store guarda un blob y devuelve una referencia estable (lo único que persiste el dominio).
type Store interface {
	Put(ctx context.Context, kind Kind, filename string, r io.Reader, contentType string) (string, error)
}

// ObjectKey arma la clave de un blob nuevo: <kind>/<uuid><ext>. El nombre original no se conserva.
func ObjectKey(kind Kind, filename string) string {
	return string(kind) + "/" + uuid.NewString() + strings.ToLower(path.Ext(filename))
}
