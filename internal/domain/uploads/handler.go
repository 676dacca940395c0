package uploads

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"noahs-ark/internal/platform/apperr"
	"noahs-ark/internal/platform/httpx"
	"noahs-ark/internal/ports/files"

	"github.com/go-chi/chi/v5"
)

// 32 MiB en memoria; el resto va a archivos temporales (net/http).
const maxMemory = 32 << 20

// MaxUploadSize limita el cuerpo completo (videos de denuncias incluidos).
const MaxUploadSize = 100 << 20

type Response struct {
	Ref string `json:"ref"`
}

func RegisterRoutes(r chi.Router, store files.Store) {
	r.Post("/uploads", uploadHandler(store))
}

// uploadHandler godoc
// @Summary Subir archivo
// @Description Guarda el archivo en el almacenamiento configurado y devuelve su referencia.
// @Tags uploads
// @Accept mpfd
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param kind formData string true "animal | adoption_document | abuse_photo | abuse_video | message_image | message_video | profile_photo"
// @Param file formData file true "Archivo"
// @Success 201 {object} Response
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /uploads [post]
func uploadHandler(store files.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := httpx.Principal(w, r); !ok {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				httpx.WriteError(w, apperr.Invalid("file", "too large"))
				return
			}
			httpx.WriteError(w, apperr.Invalid("body", "invalid multipart form"))
			return
		}
		defer r.MultipartForm.RemoveAll()

		fields := apperr.Fields{}
		kind, ok := files.ParseKind(strings.TrimSpace(r.FormValue("kind")))
		if !ok {
			fields.Add("kind", "invalid")
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			fields.Add("file", "required")
		}
		if err := fields.Err(); err != nil {
			if f != nil {
				f.Close()
			}
			httpx.WriteError(w, err)
			return
		}
		defer f.Close()

		name := filepath.Base(hdr.Filename)
		ct := hdr.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		ref, err := store.Put(r.Context(), kind, name, f, ct)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, Response{Ref: ref})
	}
}
