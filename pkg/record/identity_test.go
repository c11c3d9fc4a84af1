package record

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestToNativeID(t *testing.T) {
	native := primitive.NewObjectID()

	tests := []struct {
		name    string
		input   any
		want    primitive.ObjectID
		wantErr bool
	}{
		{name: "native id passes through", input: native, want: native},
		{name: "hex string coerces", input: native.Hex(), want: native},
		{name: "malformed string", input: "zzz", wantErr: true},
		{name: "unsupported type", input: 42, wantErr: true},
		{name: "nil", input: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToNativeID(tt.input)
			if tt.wantErr {
				var invalid *InvalidIDError
				if !errors.As(err, &invalid) {
					t.Fatalf("expected InvalidIDError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ToNativeID = %v, want %v", got, tt.want)
			}
		})
	}
}
