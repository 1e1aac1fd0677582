package storage

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"github.com/bookworm-app/bookworm-backend/internal/config"
)

// UploadService stores book covers and user avatars either on S3 or
// the local filesystem, depending on configuration.
type UploadService struct {
	s3Client  *s3.S3
	bucket    string
	baseURL   string
	uploadDir string
	maxSize   int64
	useS3     bool
}

func NewUploadService(cfg *config.Config) (*UploadService, error) {
	us := &UploadService{
		bucket:    cfg.S3Bucket,
		baseURL:   cfg.BaseURL,
		uploadDir: cfg.LocalUploadDir,
		maxSize:   cfg.MaxUploadSize,
		useS3:     cfg.UseS3,
	}

	if cfg.UseS3 {
		sess, err := session.NewSession(&aws.Config{
			Region: aws.String(cfg.AWSRegion),
		})
		if err != nil {
			return nil, fmt.Errorf("creating AWS session: %w", err)
		}
		us.s3Client = s3.New(sess)
	} else {
		if err := os.MkdirAll(cfg.LocalUploadDir, 0755); err != nil {
			return nil, fmt.Errorf("creating upload directory: %w", err)
		}
	}

	return us, nil
}

// UploadImage validates and stores an image under the given category
// ("covers" or "avatars") and returns its public URL.
func (us *UploadService) UploadImage(file multipart.File, header *multipart.FileHeader, category string) (string, error) {
	if err := us.validateImage(header); err != nil {
		return "", err
	}

	filename := generateFilename(header.Filename)

	if us.useS3 {
		return us.uploadToS3(file, filename, header, category)
	}
	return us.uploadToLocal(file, filename, category)
}

func (us *UploadService) uploadToS3(file multipart.File, filename string, header *multipart.FileHeader, category string) (string, error) {
	buffer := bytes.NewBuffer(nil)
	if _, err := io.Copy(buffer, file); err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}

	key := fmt.Sprintf("%s/%s/%s", category, time.Now().Format("2006/01"), filename)

	_, err := us.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:             aws.String(us.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(buffer.Bytes()),
		ContentType:        aws.String(header.Header.Get("Content-Type")),
		ContentDisposition: aws.String("inline"),
		ACL:                aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("uploading to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", us.bucket, key), nil
}

func (us *UploadService) uploadToLocal(file multipart.File, filename, category string) (string, error) {
	monthDir := time.Now().Format("2006/01")
	fullDir := filepath.Join(us.uploadDir, category, monthDir)

	if err := os.MkdirAll(fullDir, 0755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}

	dest, err := os.Create(filepath.Join(fullDir, filename))
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, file); err != nil {
		return "", fmt.Errorf("saving file: %w", err)
	}

	return fmt.Sprintf("%s/uploads/%s/%s/%s", us.baseURL, category, monthDir, filename), nil
}

// DeleteImage removes a previously uploaded image by its public URL.
func (us *UploadService) DeleteImage(fileURL string) error {
	if us.useS3 {
		key := strings.TrimPrefix(fileURL, fmt.Sprintf("https://%s.s3.amazonaws.com/", us.bucket))
		_, err := us.s3Client.DeleteObject(&s3.DeleteObjectInput{
			Bucket: aws.String(us.bucket),
			Key:    aws.String(key),
		})
		return err
	}

	urlPath := strings.TrimPrefix(fileURL, us.baseURL)
	localPath := filepath.Join(us.uploadDir, strings.TrimPrefix(urlPath, "/uploads/"))
	return os.Remove(localPath)
}

func (us *UploadService) validateImage(header *multipart.FileHeader) error {
	if header.Size > us.maxSize {
		return fmt.Errorf("file size exceeds maximum of %dMB", us.maxSize>>20)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png":
		return nil
	}
	return fmt.Errorf("file type %s not allowed", ext)
}

func generateFilename(originalName string) string {
	ext := filepath.Ext(originalName)
	return fmt.Sprintf("%s_%d%s", uuid.New().String(), time.Now().Unix(), ext)
}
