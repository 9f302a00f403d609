package importer

import "errors"

var (
	// ErrItemNotFound indicates no library item matches the download,
	// meaning the download is not one of ours.
	ErrItemNotFound = errors.New("no library item for download")

	// ErrNoRootFolder indicates neither the item's root folder nor the
	// default root exists on disk.
	ErrNoRootFolder = errors.New("root folder does not exist")

	// ErrNoVideoFile indicates no eligible video file was found in the
	// download.
	ErrNoVideoFile = errors.New("no video file found in download")

	// ErrMoveFailed indicates the file move operation failed.
	ErrMoveFailed = errors.New("failed to move file")

	// ErrUnsafeDelete indicates a cleanup target too shallow to delete
	// safely.
	ErrUnsafeDelete = errors.New("refusing to delete shallow path")
)
