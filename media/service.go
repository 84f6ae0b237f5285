package media

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/McTechie/tubecafe-backend/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Asset is an uploaded object.
type Asset struct {
	URL      string
	Key      string
	Duration float64
}

type Service struct {
	store   Store
	prober  Prober
	tempDir string
	videos  *utils.FileValidator
	images  *utils.FileValidator
}

type ServiceOptions struct {
	TempDir    string
	MaxVideoMB int
	MaxImageMB int
}

func NewService(store Store, prober Prober, o ServiceOptions) *Service {
	if prober == nil {
		prober = FFProbe{}
	}
	return &Service{
		store:   store,
		prober:  prober,
		tempDir: o.TempDir,
		videos:  utils.NewFileValidator("video/", o.MaxVideoMB),
		images:  utils.NewFileValidator("image/", o.MaxImageMB),
	}
}

func objectKey(folder, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".bin"
	}
	return path.Join(folder, uuid.NewString()+ext)
}

// UploadImage validates fh as an image and stores it under folder.
func (s *Service) UploadImage(ctx context.Context, fh *multipart.FileHeader, folder string) (Asset, error) {
	contentType, err := s.images.ValidateFile(fh)
	if err != nil {
		return Asset{}, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	f, err := fh.Open()
	if err != nil {
		return Asset{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	key := objectKey(folder, fh.Filename)
	url, err := s.store.Put(ctx, key, f, fh.Size, contentType)
	if err != nil {
		return Asset{}, err
	}
	return Asset{URL: url, Key: key}, nil
}

// UploadVideo spools the upload to a temp file so ffprobe can read its
// duration, then stores it.
func (s *Service) UploadVideo(ctx context.Context, fh *multipart.FileHeader, folder string) (Asset, error) {
	contentType, err := s.videos.ValidateFile(fh)
	if err != nil {
		return Asset{}, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	src, err := fh.Open()
	if err != nil {
		return Asset{}, fmt.Errorf("open file: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(s.tempDir, "upload-*"+filepath.Ext(fh.Filename))
	if err != nil {
		return Asset{}, fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if _, err := io.Copy(tmp, src); err != nil {
		return Asset{}, fmt.Errorf("spool upload: %w", err)
	}

	duration, err := s.prober.Duration(ctx, tmp.Name())
	if err != nil {
		return Asset{}, fmt.Errorf("read video duration: %w", err)
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return Asset{}, fmt.Errorf("rewind temp file: %w", err)
	}

	key := objectKey(folder, fh.Filename)
	url, err := s.store.Put(ctx, key, tmp, fh.Size, contentType)
	if err != nil {
		return Asset{}, err
	}
	return Asset{URL: url, Key: key, Duration: duration}, nil
}

// UploadVideoWithThumbnail uploads both files concurrently. If either
// fails, the one that succeeded is removed again.
func (s *Service) UploadVideoWithThumbnail(ctx context.Context, video, thumbnail *multipart.FileHeader, folder string) (Asset, Asset, error) {
	var videoAsset, thumbAsset Asset

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := s.UploadVideo(gctx, video, folder+"/videos")
		videoAsset = a
		return err
	})
	g.Go(func() error {
		a, err := s.UploadImage(gctx, thumbnail, folder+"/thumbnails")
		thumbAsset = a
		return err
	})

	if err := g.Wait(); err != nil {
		for _, a := range []Asset{videoAsset, thumbAsset} {
			if a.Key != "" {
				s.deleteKey(context.WithoutCancel(ctx), a.Key)
			}
		}
		return Asset{}, Asset{}, err
	}
	return videoAsset, thumbAsset, nil
}

// DeleteByURL removes the asset at url. Empty URLs are ignored.
func (s *Service) DeleteByURL(ctx context.Context, url string) error {
	if strings.TrimSpace(url) == "" {
		return nil
	}
	key, err := s.store.KeyFromURL(url)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, key)
}

// DiscardURL is DeleteByURL for cleanup paths: failures are logged, not returned.
func (s *Service) DiscardURL(ctx context.Context, url string) {
	if err := s.DeleteByURL(ctx, url); err != nil {
		logrus.WithFields(logrus.Fields{"source": "media", "url": url}).WithError(err).Warn("failed to delete asset")
	}
}

func (s *Service) deleteKey(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		logrus.WithFields(logrus.Fields{"source": "media", "key": key}).WithError(err).Warn("failed to delete asset")
	}
}
