package repositories

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AvatarBucket is the GridFS bucket holding avatar images.
const AvatarBucket = "avatars"

// Avatar is an open avatar object. Callers must Close it.
type Avatar struct {
	io.ReadCloser
	ContentType string
	Size        int64
}

// AvatarStore defines the interface for avatar object storage
type AvatarStore interface {
	Upload(ctx context.Context, ownerID, contentType string, r io.Reader) (string, error)
	Open(ctx context.Context, id string) (*Avatar, error)
}

// GridFSAvatarStore stores avatars in a MongoDB GridFS bucket
type GridFSAvatarStore struct {
	bucket *gridfs.Bucket
}

func NewGridFSAvatarStore(db *mongo.Database) (*GridFSAvatarStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(AvatarBucket))
	if err != nil {
		return nil, fmt.Errorf("open avatar bucket: %w", err)
	}
	return &GridFSAvatarStore{bucket: bucket}, nil
}

// Upload streams r into the bucket and returns the new file id as hex.
func (s *GridFSAvatarStore) Upload(ctx context.Context, ownerID, contentType string, r io.Reader) (string, error) {
	if deadline, ok := ctx.Deadline(); ok {
		if err := s.bucket.SetWriteDeadline(deadline); err != nil {
			return "", err
		}
	}
	opts := options.GridFSUpload().SetMetadata(bson.M{
		"owner_id":     ownerID,
		"content_type": contentType,
	})
	filename := fmt.Sprintf("%s/%d", ownerID, time.Now().UnixNano())
	id, err := s.bucket.UploadFromStream(filename, r, opts)
	if err != nil {
		return "", err
	}
	return id.Hex(), nil
}

func (s *GridFSAvatarStore) Open(ctx context.Context, id string) (*Avatar, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := s.bucket.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
	}
	stream, err := s.bucket.OpenDownloadStream(objID)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	file := stream.GetFile()
	contentType := "application/octet-stream"
	if v, ok := file.Metadata.Lookup("content_type").StringValueOK(); ok && v != "" {
		contentType = v
	}
	return &Avatar{ReadCloser: stream, ContentType: contentType, Size: file.Length}, nil
}

// NopAvatarStore is used when MongoDB is not configured.
type NopAvatarStore struct{}

func (NopAvatarStore) Upload(context.Context, string, string, io.Reader) (string, error) {
	return "", ErrUnavailable
}

func (NopAvatarStore) Open(context.Context, string) (*Avatar, error) {
	return nil, ErrUnavailable
}
