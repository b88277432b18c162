package portfolio

import (
	"context"
	"io"
	"net/url"
	"strings"

	"resumeflow/internal/credits"
	"resumeflow/internal/shared/apperr"
	"resumeflow/internal/shared/storage/object"
	"resumeflow/resume/model"
	"resumeflow/resume/render"
)

const (
	FileName    = "portfolio.html"
	ContentType = "text/html; charset=utf-8"

	previewPrefix = "data:text/html;charset=utf-8,"
)

// Input is a portfolio request.
type Input struct {
	Resume *model.ParsedResume
	Theme  string
}

// Artifact is the downloadable result of a portfolio generation.
type Artifact struct {
	HTML        string `json:"html"`
	PreviewURL  string `json:"previewUrl"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	ArtifactKey string `json:"artifactKey,omitempty"`
	Theme       string `json:"theme"`
}

// Service renders portfolio sites for one credit and stores the result.
type Service struct {
	Gate  *credits.Gate
	Store object.ObjectStore
}

// NewService constructs a Service. A nil store skips persistence.
func NewService(gate *credits.Gate, store object.ObjectStore) *Service {
	return &Service{Gate: gate, Store: store}
}

// Generate renders the résumé and persists the page under the caller's namespace.
func (s *Service) Generate(ctx context.Context, userID string, in Input) (Artifact, error) {
	if strings.TrimSpace(userID) == "" {
		return Artifact{}, apperr.ErrUnauthenticated
	}
	if in.Resume == nil {
		return Artifact{}, apperr.Newf(apperr.KindInvalidInput, "Resume data is required")
	}
	if !in.Resume.HasName() {
		return Artifact{}, apperr.Newf(apperr.KindInvalidInput, "Resume must include a name")
	}
	theme := render.NormalizeTheme(in.Theme)

	return credits.RunGated(ctx, s.Gate, userID, func(ctx context.Context) (Artifact, error) {
		html, err := render.Portfolio(in.Resume, theme)
		if err != nil {
			return Artifact{}, apperr.New(apperr.KindInternal, "Failed to render portfolio", err)
		}
		art := Artifact{
			HTML:        html,
			PreviewURL:  PreviewURL(html),
			FileName:    FileName,
			ContentType: ContentType,
			Theme:       theme,
		}
		if s.Store == nil {
			return art, nil
		}
		obj, err := s.Store.Put(ctx, userID, FileName, ContentType, strings.NewReader(html))
		if err != nil {
			return Artifact{}, apperr.New(apperr.KindStoreUnavailable, "Failed to store portfolio", err)
		}
		art.ArtifactKey = obj.Key
		return art, nil
	})
}

// Open returns a stored artifact if it belongs to userID.
func (s *Service) Open(ctx context.Context, userID, key string) (*Download, error) {
	key = strings.TrimLeft(key, "/")
	if s.Store == nil || !object.OwnedBy(key, userID) {
		return nil, object.ErrNotFound
	}
	rc, obj, err := s.Store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	return &Download{Body: rc, Object: obj}, nil
}

// Download is an open artifact stream.
type Download struct {
	Body   io.ReadCloser
	Object object.Object
}

// PreviewURL encodes html as a data URL the way encodeURIComponent would.
func PreviewURL(html string) string {
	return previewPrefix + strings.ReplaceAll(url.QueryEscape(html), "+", "%20")
}
