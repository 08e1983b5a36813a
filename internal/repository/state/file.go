package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/alarm-node/internal/config"
	"github.com/oshokin/alarm-node/internal/domain/home"
)

// Field names of the stored document.
const (
	fieldLightOn   = "light_on"
	fieldArmed     = "armed"
	fieldUpdatedAt = "updated_at"
)

// Repository defines persistence operations for the commanded values.
type Repository interface {
	Load(ctx context.Context) (*home.Commanded, error)
	Save(ctx context.Context, values *home.Commanded) error
}

// FileRepository persists the commanded values to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the JSON state file.
	path string
	// now stamps saved documents.
	now func() time.Time
	// mu protects concurrent access to the state file.
	mu sync.Mutex
}

var (
	// ErrNotFound is returned when the state file does not exist yet.
	ErrNotFound = errors.New("state not found")

	// errMalformed is returned when the file decodes but a field is missing or mistyped.
	errMalformed = errors.New("malformed state file")
)

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
		now:  time.Now,
	}
}

// Load reads the commanded values from disk.
func (r *FileRepository) Load(_ context.Context) (*home.Commanded, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	var doc structpb.Struct
	if err = protojson.Unmarshal(contents, &doc); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	return fromStruct(&doc)
}

// Save writes the commanded values to disk.
func (r *FileRepository) Save(_ context.Context, values *home.Commanded) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc := toStruct(values, r.now())

	data, err := protojson.MarshalOptions{Multiline: true}.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	return nil
}

func fromStruct(doc *structpb.Struct) (*home.Commanded, error) {
	fields := doc.GetFields()

	lightOn, ok := fields[fieldLightOn].GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errMalformed, fieldLightOn)
	}

	armed, ok := fields[fieldArmed].GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errMalformed, fieldArmed)
	}

	return &home.Commanded{
		LightOn: lightOn.BoolValue,
		Armed:   armed.BoolValue,
	}, nil
}

func toStruct(values *home.Commanded, at time.Time) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			fieldLightOn:   structpb.NewBoolValue(values.LightOn),
			fieldArmed:     structpb.NewBoolValue(values.Armed),
			fieldUpdatedAt: structpb.NewStringValue(at.UTC().Format(time.RFC3339)),
		},
	}
}
