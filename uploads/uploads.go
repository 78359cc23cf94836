package uploads

import (
	"fmt"
	"image"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/imjustneko/Travel-web/apperr"
	"github.com/imjustneko/Travel-web/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
	log "github.com/sirupsen/logrus"
)

const (
	FormKey        = "images"
	maxFiles       = 10
	maxUploadBytes = 32 << 20
	thumbWidth     = 300
	PublicPrefix   = "/uploads"
)

// Saved describes one stored image.
type Saved struct {
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
}

// Store writes uploaded images and their thumbnails below Dir.
type Store struct {
	Dir string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// Init creates the upload and thumbnail directories.
func (s *Store) Init() error {
	return os.MkdirAll(filepath.Join(s.Dir, "thumb"), 0o755)
}

// SaveImage decodes img and stores a JPEG original plus a thumbnail
// thumbWidth pixels wide.
func (s *Store) SaveImage(img image.Image) (Saved, error) {
	name := utils.GetUUID() + ".jpg"
	originalPath := filepath.Join(s.Dir, name)
	thumbPath := filepath.Join(s.Dir, "thumb", name)

	if err := s.Init(); err != nil {
		return Saved{}, fmt.Errorf("create upload directory: %w", err)
	}
	if err := imaging.Save(img, originalPath, imaging.JPEGQuality(85)); err != nil {
		return Saved{}, fmt.Errorf("save original image: %w", err)
	}
	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, thumbPath, imaging.JPEGQuality(80)); err != nil {
		return Saved{}, fmt.Errorf("save thumbnail: %w", err)
	}

	return Saved{
		URL:       PublicPrefix + "/" + name,
		Thumbnail: PublicPrefix + "/thumb/" + name,
	}, nil
}

func (s *Store) saveFile(fh *multipart.FileHeader) (Saved, error) {
	src, err := fh.Open()
	if err != nil {
		return Saved{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer src.Close()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return Saved{}, apperr.NewValidation("Unsupported image: " + utils.SanitizeFilename(fh.Filename))
	}
	return s.SaveImage(img)
}

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// POST /api/admin/upload
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Unable to parse form")
		return
	}
	files := r.MultipartForm.File[FormKey]
	if len(files) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "No images uploaded")
		return
	}
	if len(files) > maxFiles {
		utils.RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("At most %d images per upload", maxFiles))
		return
	}

	urls := make([]string, 0, len(files))
	thumbs := make([]string, 0, len(files))
	for _, fh := range files {
		saved, err := h.store.saveFile(fh)
		if err != nil {
			utils.RespondWithAppError(w, r, err)
			return
		}
		urls = append(urls, saved.URL)
		thumbs = append(thumbs, saved.Thumbnail)
	}

	log.WithFields(log.Fields{"count": len(urls), "user": utils.GetUserIDFromRequest(r)}).Info("images uploaded")
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "urls": urls, "thumbnails": thumbs})
}

// Serve returns a handler for GET /uploads/*filepath.
func (h *Handler) Serve() httprouter.Handle {
	fs := http.StripPrefix(PublicPrefix, http.FileServer(http.Dir(h.store.Dir)))
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		fs.ServeHTTP(w, r)
	}
}

