package botapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"slices"
	"strconv"
)

// Upload sends a file as multipart/form-data. The file is read fully into
// memory and attached under fileField; the remaining params become form
// fields.
//
// Upload does not retry on 429: a rate-limited upload fails immediately.
func (c *Client) Upload(ctx context.Context, method string, params Params, fileField, filePath string) (*Response, error) {
	if filePath == "" {
		return nil, fmt.Errorf("%w: %s: empty file path", ErrInvalidArgument, method)
	}
	if fileField == "" {
		return nil, fmt.Errorf("%w: %s: empty file field", ErrInvalidArgument, method)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("botapi: %s: read upload: %w", method, err)
	}

	body, contentType, err := encodeMultipart(params, fileField, filepath.Base(filePath), data)
	if err != nil {
		return nil, fmt.Errorf("botapi: encode %s upload: %w", method, err)
	}

	out, err := c.post(ctx, method, contentType, body, 1)
	if err != nil {
		return nil, err
	}
	if out.apiErr != nil {
		return nil, out.apiErr
	}
	return out.resp, nil
}

// encodeMultipart writes params (in key order) followed by the file part.
func encodeMultipart(params Params, fileField, fileName string, data []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(params))
	for k := range params {
		if k != fileField {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	for _, k := range keys {
		v, err := formValue(params[k])
		if err != nil {
			return nil, "", fmt.Errorf("field %s: %w", k, err)
		}
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}

	part, err := w.CreateFormFile(fileField, fileName)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// formValue renders a parameter as a form field. Scalars are written
// verbatim; anything else is JSON-serialized, as the Bot API expects for
// fields like reply_markup.
func formValue(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case fmt.Stringer:
		return val.String(), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
