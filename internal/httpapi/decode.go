package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"portfolioserver/internal/media"
)

const (
	maxJSONBody   = 1 << 20
	maxUploadBody = 16 << 20
	maxFormMemory = 8 << 20
)

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("multiple json values")
		}
		return err
	}
	return nil
}

// formData is a flattened request body. Multipart, urlencoded and JSON
// bodies all end up here so dashboard forms and API clients share handlers.
type formData struct {
	values    map[string]string
	files     map[string]*multipart.FileHeader
	multipart *multipart.Form
	opened    []io.Closer
}

func readForm(w http.ResponseWriter, r *http.Request) (*formData, error) {
	f := &formData{
		values: map[string]string{},
		files:  map[string]*multipart.FileHeader{},
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return nil, err
		}
		f.multipart = r.MultipartForm
		for k, vs := range r.MultipartForm.Value {
			if len(vs) > 0 {
				f.values[k] = vs[0]
			}
		}
		for k, fhs := range r.MultipartForm.File {
			if len(fhs) > 0 {
				f.files[k] = fhs[0]
			}
		}
	case "application/x-www-form-urlencoded":
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		for k, vs := range r.PostForm {
			if len(vs) > 0 {
				f.values[k] = vs[0]
			}
		}
	default:
		var raw map[string]any
		if err := decodeJSON(w, r, &raw); err != nil {
			return nil, err
		}
		for k, v := range raw {
			f.values[k] = formString(v)
		}
	}
	return f, nil
}

func formString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, formString(item))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}

func (f *formData) get(key string) string {
	return f.values[key]
}

// ptr is nil when the key was not sent at all.
func (f *formData) ptr(key string) *string {
	v, ok := f.values[key]
	if !ok {
		return nil
	}
	return &v
}

func (f *formData) boolPtr(key string) (*bool, error) {
	v, ok := f.values[key]
	if !ok || strings.TrimSpace(v) == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// upload opens the file sent under key, or returns nil when there is none.
// Opened files are released by close.
func (f *formData) upload(key string) (*media.Upload, error) {
	fh := f.files[key]
	if fh == nil {
		return nil, nil
	}
	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	f.opened = append(f.opened, file)
	return &media.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        file,
	}, nil
}

func (f *formData) close() {
	for _, c := range f.opened {
		_ = c.Close()
	}
	if f.multipart != nil {
		_ = f.multipart.RemoveAll()
	}
}

func writeBadBody(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		WriteError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body is too large")
		return
	}
	WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body")
}
