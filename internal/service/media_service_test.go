package service

import (
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maarifahub/maarifa-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memFile struct {
	*strings.Reader
}

func (memFile) Close() error { return nil }

func newMemUpload(content, filename, contentType string) (multipart.File, *multipart.FileHeader) {
	header := &multipart.FileHeader{
		Filename: filename,
		Size:     int64(len(content)),
		Header:   textproto.MIMEHeader{"Content-Type": []string{contentType}},
	}
	return memFile{strings.NewReader(content)}, header
}

func newTestMediaService(t *testing.T) *MediaService {
	t.Helper()
	return NewMediaService(&config.Config{
		UploadDir:      t.TempDir(),
		MaxUploadBytes: 1024,
	})
}

func TestSaveUploadStoresUnderFreshName(t *testing.T) {
	svc := newTestMediaService(t)

	file, header := newMemUpload("fake image bytes", "receipt.png", "image/png")
	name, err := svc.SaveUpload(file, header)
	require.NoError(t, err)

	// The stored name is generated, never the client's filename.
	assert.NotEqual(t, "receipt.png", name)
	assert.Equal(t, ".png", filepath.Ext(name))

	data, err := os.ReadFile(filepath.Join(svc.cfg.UploadDir, name))
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(data))
}

func TestSaveUploadRejectsUnsupportedType(t *testing.T) {
	svc := newTestMediaService(t)

	file, header := newMemUpload("#!/bin/sh", "exploit.sh", "application/x-sh")
	_, err := svc.SaveUpload(file, header)
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestSaveUploadRejectsOversize(t *testing.T) {
	svc := newTestMediaService(t)

	file, header := newMemUpload(strings.Repeat("a", 2048), "big.jpg", "image/jpeg")
	_, err := svc.SaveUpload(file, header)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestOpenResolvesStoredFile(t *testing.T) {
	svc := newTestMediaService(t)

	file, header := newMemUpload("%PDF-1.4", "receipt.pdf", "application/pdf")
	name, err := svc.SaveUpload(file, header)
	require.NoError(t, err)

	path, contentType, err := svc.Open(name)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.Equal(t, filepath.Join(svc.cfg.UploadDir, name), path)
}

func TestOpenBlocksPathTraversal(t *testing.T) {
	svc := newTestMediaService(t)

	// Plant a file outside the upload dir; a traversal name must not reach it.
	outside := filepath.Join(filepath.Dir(svc.cfg.UploadDir), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o600))

	_, _, err := svc.Open("../secret.txt")
	assert.ErrorIs(t, err, ErrFileNotFound)
	_, _, err = svc.Open("..")
	assert.ErrorIs(t, err, ErrFileNotFound)
	_, _, err = svc.Open("missing.png")
	assert.ErrorIs(t, err, ErrFileNotFound)
}
