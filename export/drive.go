package export

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/malusev998/currency-quotes"
)

const (
	DefaultDriveFileName = "cotacoes_diarias.csv"
	DefaultDriveTempPath = "/tmp/cotacoes_diarias.csv"
)

type (
	// Uploader stores a file named name in a cloud folder, replacing a file of the same name.
	Uploader interface {
		Upload(ctx context.Context, name string, content io.Reader) error
	}

	// DriveUploader uploads to Google Drive.
	DriveUploader struct {
		service  *drive.Service
		folderID string
	}

	// DriveSink encodes the dataset to a local CSV file and uploads it.
	DriveSink struct {
		uploader Uploader
		fs       afero.Fs
		tempPath string
		fileName string
	}
)

// NewDriveUploader authenticates with a service account credentials file.
func NewDriveUploader(ctx context.Context, credentialsFile, folderID string) (*DriveUploader, error) {
	service, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveFileScope),
	)
	if err != nil {
		return nil, eris.Wrap(err, "drive: create service")
	}

	return &DriveUploader{service: service, folderID: folderID}, nil
}

func (d *DriveUploader) Upload(ctx context.Context, name string, content io.Reader) error {
	list, err := d.service.Files.List().Q(driveQuery(name, d.folderID)).Fields("files(id, name)").Context(ctx).Do()
	if err != nil {
		return eris.Wrapf(err, "drive: list %s", name)
	}

	if len(list.Files) > 0 {
		id := list.Files[0].Id
		if _, err := d.service.Files.Update(id, &drive.File{}).Media(content).Context(ctx).Do(); err != nil {
			return eris.Wrapf(err, "drive: update %s", name)
		}

		zap.L().Info("drive file updated", zap.String("name", name), zap.String("id", id))

		return nil
	}

	file := &drive.File{Name: name}
	if d.folderID != "" {
		file.Parents = []string{d.folderID}
	}

	created, err := d.service.Files.Create(file).Media(content).Context(ctx).Do()
	if err != nil {
		return eris.Wrapf(err, "drive: create %s", name)
	}

	zap.L().Info("drive file created", zap.String("name", name), zap.String("id", created.Id))

	return nil
}

// NewDriveSink writes the temporary file on fs. A nil fs means the OS filesystem.
func NewDriveSink(uploader Uploader, fs afero.Fs, tempPath, fileName string) *DriveSink {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	if tempPath == "" {
		tempPath = DefaultDriveTempPath
	}

	if fileName == "" {
		fileName = DefaultDriveFileName
	}

	return &DriveSink{
		uploader: uploader,
		fs:       fs,
		tempPath: tempPath,
		fileName: fileName,
	}
}

func (d *DriveSink) Name() string {
	return string(currency.DriveSink)
}

// Write leaves the temporary file in place after the upload.
func (d *DriveSink) Write(ctx context.Context, dataset currency.Dataset) error {
	if err := d.fs.MkdirAll(path.Dir(d.tempPath), 0o755); err != nil {
		return eris.Wrapf(err, "drive: mkdir %s", path.Dir(d.tempPath))
	}

	out, err := d.fs.Create(d.tempPath)
	if err != nil {
		return eris.Wrapf(err, "drive: create %s", d.tempPath)
	}

	if err := EncodeCSV(out, dataset); err != nil {
		_ = out.Close()
		return eris.Wrapf(err, "drive: encode %s", d.tempPath)
	}

	if err := out.Close(); err != nil {
		return eris.Wrapf(err, "drive: close %s", d.tempPath)
	}

	in, err := d.fs.Open(d.tempPath)
	if err != nil {
		return eris.Wrapf(err, "drive: open %s", d.tempPath)
	}
	defer in.Close() //nolint:errcheck

	if err := d.uploader.Upload(ctx, d.fileName, in); err != nil {
		return eris.Wrapf(err, "drive: upload %s", d.fileName)
	}

	zap.L().Info("upload complete", zap.String("sink", d.Name()), zap.String("file", d.fileName))

	return nil
}

// driveQuery finds a live file by name, optionally inside folderID.
func driveQuery(name, folderID string) string {
	query := fmt.Sprintf("name = '%s' and trashed = false", quoteDriveValue(name))
	if folderID != "" {
		query += fmt.Sprintf(" and '%s' in parents", quoteDriveValue(folderID))
	}

	return query
}

// quoteDriveValue escapes a string literal for the Drive query language.
func quoteDriveValue(value string) string {
	return strings.ReplaceAll(strings.ReplaceAll(value, `\`, `\\`), "'", `\'`)
}
