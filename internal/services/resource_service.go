package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"blog-content-api/internal/models"
	"blog-content-api/internal/slug"
	"blog-content-api/internal/store"
)

// presentTag accepts any value that exists, including empty strings.
// A missing or null value fails before the tag function runs.
const presentTag = "present"

// ResourceDeps holds the collaborators of a ResourceService
type ResourceDeps struct {
	Schema   *models.ResourceSchema
	Store    store.ItemStore
	Uploader Uploader // required when the schema has a blob field
	IDs      IDGenerator
	Clock    Clock
	Logger   *logrus.Logger
}

// ResourceService implements create, read, list, update and delete for one
// resource schema over an item store.
type ResourceService struct {
	schema    *models.ResourceSchema
	store     store.ItemStore
	uploader  Uploader
	ids       IDGenerator
	clock     Clock
	logger    *logrus.Logger
	validator *validator.Validate
	rules     map[string]interface{}
}

// NewResourceService creates a service for deps.Schema
func NewResourceService(deps ResourceDeps) (*ResourceService, error) {
	if deps.Schema == nil {
		return nil, fmt.Errorf("resource schema is required")
	}
	if err := deps.Schema.Validate(); err != nil {
		return nil, err
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("%s: item store is required", deps.Schema.Name)
	}
	if deps.Schema.HasBlob() && deps.Uploader == nil {
		return nil, fmt.Errorf("%s: uploader is required for blob field %s", deps.Schema.Name, deps.Schema.Blob.DataKey)
	}
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}
	if deps.IDs == nil {
		deps.IDs = NewTimestampIDGenerator(deps.Clock)
	}
	if deps.Logger == nil {
		deps.Logger = logrus.New()
	}

	v := validator.New()
	if err := v.RegisterValidation(presentTag, func(fl validator.FieldLevel) bool { return true }); err != nil {
		return nil, fmt.Errorf("register validation: %w", err)
	}

	rules := make(map[string]interface{}, len(deps.Schema.Required))
	for _, f := range deps.Schema.Required {
		rules[f] = presentTag
	}

	return &ResourceService{
		schema:    deps.Schema,
		store:     deps.Store,
		uploader:  deps.Uploader,
		ids:       deps.IDs,
		clock:     deps.Clock,
		logger:    deps.Logger,
		validator: v,
		rules:     rules,
	}, nil
}

// Schema returns the schema the service was built for
func (s *ResourceService) Schema() *models.ResourceSchema {
	return s.schema
}

// Create validates payload, uploads its blob if any and stores a new item
func (s *ResourceService) Create(ctx context.Context, payload map[string]interface{}) (models.Item, error) {
	if err := s.validateRequired(payload); err != nil {
		return nil, err
	}

	id, err := s.ids.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate %s id: %w", s.schema.Name, err)
	}
	now := s.now()

	item := models.Item{
		models.FieldID:        id,
		models.FieldCreatedAt: now,
		models.FieldUpdatedAt: now,
	}
	for _, f := range s.schema.Fields {
		if v, ok := payload[f]; ok {
			item[f] = v
		}
	}
	for k, v := range s.schema.Defaults {
		item[k] = v
	}

	if s.schema.HasSlug() {
		sl, err := s.slugFor(item[s.schema.SlugSource])
		if err != nil {
			return nil, err
		}
		item[models.FieldSlug] = sl
	}

	uploaded := false
	if s.schema.HasBlob() {
		if raw, ok := payload[s.schema.Blob.DataKey]; ok {
			url, err := s.upload(ctx, id, raw)
			if err != nil {
				return nil, err
			}
			item[s.schema.Blob.URLField] = url
			uploaded = true
		}
	}

	if err := s.store.Put(ctx, item); err != nil {
		if uploaded {
			s.logger.WithFields(logrus.Fields{
				"resource": s.schema.Name,
				"id":       id,
				"url":      item[s.schema.Blob.URLField],
			}).Warn("Item write failed after blob upload; blob is orphaned")
		}
		return nil, &StoreError{Op: "create", Resource: s.schema.Name, Err: err}
	}

	s.log("create", id).Info("Item created")
	return item, nil
}

// Get returns the item with id
func (s *ResourceService) Get(ctx context.Context, id string) (models.Item, error) {
	if err := s.requireID(id); err != nil {
		return nil, err
	}

	item, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.storeErr("get", id, err)
	}
	return item, nil
}

// List returns every item of the resource in no particular order
func (s *ResourceService) List(ctx context.Context) ([]models.Item, error) {
	items, err := s.store.ScanAll(ctx)
	if err != nil {
		return nil, &StoreError{Op: "list", Resource: s.schema.Plural, Err: err}
	}
	return items, nil
}

// Update applies a partial update. Fields absent from payload keep their
// stored values, the slug is recomputed, and created_at and id never change.
func (s *ResourceService) Update(ctx context.Context, id string, payload map[string]interface{}) (models.Item, error) {
	if err := s.requireID(id); err != nil {
		return nil, err
	}

	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.storeErr("update", id, err)
	}

	fields := make(map[string]interface{}, len(s.schema.Fields)+4)
	for _, f := range s.schema.Fields {
		if v, ok := payload[f]; ok {
			fields[f] = v
		} else if v, ok := existing[f]; ok {
			fields[f] = v
		}
	}
	for k := range s.schema.Defaults {
		if v, ok := existing[k]; ok {
			fields[k] = v
		}
	}

	if s.schema.HasSlug() {
		sl, err := s.slugFor(fields[s.schema.SlugSource])
		if err != nil {
			return nil, err
		}
		fields[models.FieldSlug] = sl
	}

	if s.schema.HasBlob() {
		urlField := s.schema.Blob.URLField
		if raw, ok := payload[s.schema.Blob.DataKey]; ok {
			url, err := s.upload(ctx, id, raw)
			if err != nil {
				return nil, err
			}
			fields[urlField] = url
		} else if v, ok := existing[urlField]; ok {
			fields[urlField] = v
		}
	}

	if v, ok := existing[models.FieldCreatedAt]; ok {
		fields[models.FieldCreatedAt] = v
	}
	fields[models.FieldUpdatedAt] = s.now()

	updated, err := s.store.UpdateFields(ctx, id, fields)
	if err != nil {
		return nil, s.storeErr("update", id, err)
	}

	s.log("update", id).Info("Item updated")
	return updated, nil
}

// Delete removes the item. Deleting a missing id succeeds.
func (s *ResourceService) Delete(ctx context.Context, id string) error {
	if err := s.requireID(id); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return &StoreError{Op: "delete", Resource: s.schema.Name, Err: err}
	}

	s.log("delete", id).Info("Item deleted")
	return nil
}

func (s *ResourceService) validateRequired(payload map[string]interface{}) error {
	if payload == nil {
		payload = map[string]interface{}{}
	}

	errs := s.validator.ValidateMap(payload, s.rules)
	if len(errs) == 0 {
		return nil
	}

	missing := make([]string, 0, len(errs))
	for f := range errs {
		missing = append(missing, f)
	}
	sort.Strings(missing)

	return &ValidationError{
		Resource: s.schema.Name,
		Fields:   missing,
		Reason:   "missing required fields",
	}
}

func (s *ResourceService) slugFor(v interface{}) (string, error) {
	if v == nil {
		return "", nil
	}
	title, ok := v.(string)
	if !ok {
		return "", &ValidationError{
			Resource: s.schema.Name,
			Fields:   []string{s.schema.SlugSource},
			Reason:   "field must be a string",
		}
	}
	return slug.Make(title), nil
}

func (s *ResourceService) upload(ctx context.Context, id string, raw interface{}) (string, error) {
	data, ok := raw.(string)
	if !ok {
		return "", &UploadError{
			Label: s.schema.Blob.Label,
			Err:   fmt.Errorf("%s must be a base64 string", s.schema.Blob.DataKey),
		}
	}
	return s.uploader.Upload(ctx, s.schema.Blob.Namespace, id, data)
}

func (s *ResourceService) requireID(id string) error {
	if id == "" {
		return &ValidationError{
			Resource: s.schema.Name,
			Reason:   fmt.Sprintf("%s id is required", s.schema.Name),
		}
	}
	return nil
}

func (s *ResourceService) storeErr(op, id string, err error) error {
	if store.IsNotFound(err) {
		return &NotFoundError{Resource: s.schema.DisplayName(), ID: id}
	}
	return &StoreError{Op: op, Resource: s.schema.Name, Err: err}
}

func (s *ResourceService) now() string {
	return s.clock.Now().UTC().Format(time.RFC3339Nano)
}

func (s *ResourceService) log(op, id string) *logrus.Entry {
	return s.logger.WithFields(logrus.Fields{
		"resource":  s.schema.Name,
		"operation": op,
		"id":        id,
	})
}
