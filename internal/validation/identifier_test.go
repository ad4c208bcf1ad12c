package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRecordID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		errMsg  string
		wantErr bool
	}{
		{
			name: "valid id - short",
			id:   "prod_1",
		},
		{
			name: "valid id - uuid",
			id:   "3f1c2b9e-6a4d-4f4e-9a51-2f0d8c1b7e55",
		},
		{
			name: "valid id - dotted",
			id:   "cat.fruit:2",
		},
		{
			name: "valid id - max length",
			id:   strings.Repeat("a", MaxRecordIDLen),
		},
		{
			name:    "invalid id - empty",
			id:      "",
			wantErr: true,
			errMsg:  "cannot be empty",
		},
		{
			name:    "invalid id - too long",
			id:      strings.Repeat("a", MaxRecordIDLen+1),
			wantErr: true,
			errMsg:  "must not exceed",
		},
		{
			name:    "invalid id - space",
			id:      "prod 1",
			wantErr: true,
			errMsg:  "can only contain",
		},
		{
			name:    "invalid id - quote",
			id:      "p'1",
			wantErr: true,
			errMsg:  "can only contain",
		},
		{
			name:    "invalid id - cyrillic",
			id:      "товар",
			wantErr: true,
			errMsg:  "can only contain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecordID(tt.id)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateClientID(t *testing.T) {
	tests := []struct {
		name     string
		clientID string
		wantErr  bool
	}{
		{name: "valid", clientID: "tablet-01", wantErr: false},
		{name: "valid underscore", clientID: "pos_terminal", wantErr: false},
		{name: "empty", clientID: "", wantErr: true},
		{name: "too short", clientID: "ab", wantErr: true},
		{name: "too long", clientID: strings.Repeat("x", 65), wantErr: true},
		{name: "dot not allowed", clientID: "pos.1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateClientID(tt.clientID)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
