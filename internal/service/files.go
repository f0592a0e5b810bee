package service

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/dtroode/painel-admin/internal/logger"
	"github.com/dtroode/painel-admin/internal/model"
	"github.com/dtroode/painel-admin/internal/session"
)

// Files moves documents between the object bucket and the backend.
type Files struct {
	client  *session.Client
	storage model.Storage
	logger  *logger.Logger
}

func NewFiles(client *session.Client, storage model.Storage, logger *logger.Logger) *Files {
	return &Files{
		client:  client,
		storage: storage,
		logger:  logger,
	}
}

// Push reads key from the bucket and posts it as the multipart field to
// the backend path. Extra form fields go along with the file.
func (f *Files) Push(ctx context.Context, key, apiPath, field string, fields map[string]string) (session.Result, error) {
	f.logger.Debug("Files service: pushing object",
		"key", key,
		"path", apiPath)

	obj, err := f.storage.Download(ctx, key)
	if err != nil {
		f.logger.Error("Files service: failed to download object",
			"key", key,
			"error", err.Error())
		return session.Result{}, fmt.Errorf("%w: failed to download object: %w", ErrObjectUnavailable, err)
	}
	defer obj.Close()

	form := session.NewFormData()
	for name, value := range fields {
		form.Append(name, value)
	}
	form.AppendFile(field, path.Base(key), obj)

	res := f.client.PostFormData(ctx, apiPath, form)
	if err := resultError(res); err != nil {
		return res, err
	}

	f.logger.Info("Files service: object pushed",
		"key", key,
		"path", apiPath,
		"status", res.Status)
	return res, nil
}

// Pull downloads apiPath from the backend and stores the body under key.
// An existing object is kept unless overwrite is set. It returns the stored
// size.
func (f *Files) Pull(ctx context.Context, apiPath, key string, overwrite bool) (int64, error) {
	if !overwrite {
		exists, err := f.storage.Exists(ctx, key)
		if err != nil {
			return 0, fmt.Errorf("failed to check object: %w", err)
		}
		if exists {
			return 0, fmt.Errorf("%w: %s", ErrObjectExists, key)
		}
	}

	res := f.client.Get(ctx, apiPath)
	if err := resultError(res); err != nil {
		return 0, err
	}

	if err := f.storage.Upload(ctx, key, bytes.NewReader(res.Body)); err != nil {
		f.logger.Error("Files service: failed to upload object",
			"key", key,
			"error", err.Error())
		return 0, fmt.Errorf("failed to upload object: %w", err)
	}

	f.logger.Info("Files service: object pulled",
		"key", key,
		"path", apiPath,
		"size", len(res.Body))
	return int64(len(res.Body)), nil
}
