package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"plain", cause, KindUnknown},
		{"validation", &ValidationError{Reason: "missing required fields", Fields: []string{"title"}}, KindValidation},
		{"not found", &NotFoundError{Resource: "Post", ID: "1"}, KindNotFound},
		{"upload", &UploadError{Label: "image", Err: cause}, KindUpload},
		{"store", &StoreError{Op: "get", Resource: "post", Err: cause}, KindStore},
		{"wrapped", fmt.Errorf("outer: %w", &NotFoundError{Resource: "Profile"}), KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		err  error
		want string
	}{
		{&ValidationError{Reason: "missing required fields", Fields: []string{"content", "title"}}, "missing required fields: content, title"},
		{&ValidationError{Reason: "invalid JSON body"}, "invalid JSON body"},
		{&NotFoundError{Resource: "Category", ID: "9"}, "Category not found"},
		{&UploadError{Label: "avatar", Err: cause}, "error uploading avatar to S3: boom"},
		{&StoreError{Op: "list", Resource: "posts", Err: cause}, "failed to list posts: boom"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}

	if !errors.Is(&UploadError{Err: cause}, cause) || !errors.Is(&StoreError{Err: cause}, cause) {
		t.Error("upload and store errors should unwrap to their cause")
	}
}
