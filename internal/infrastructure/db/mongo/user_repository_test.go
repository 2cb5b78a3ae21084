package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/instroom/instroom-web/internal/core/domain"
)

func TestUserDocument_BSONLayout(t *testing.T) {
	user := &domain.User{
		ID:             "3b0c5a52-6f0e-4c1a-9f61-2f7f1d0f6a10",
		Email:          "a@b.com",
		FullName:       "Ann",
		PasswordDigest: "$2a$12$digest",
		Role:           domain.RoleSoloUser,
		UpdatedAt:      time.Date(2024, 5, 1, 12, 30, 0, 0, time.FixedZone("CET", 3600)),
	}

	raw, err := bson.Marshal(toDocument(user))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"_id", "email", "full_name", "password_digest", "role", "updated_at"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("expected key %q in document, got %v", key, fields)
		}
	}
	if _, ok := fields["company"]; ok {
		t.Error("empty company should be omitted")
	}
	if fields["_id"] != user.ID {
		t.Errorf("expected _id %q, got %v", user.ID, fields["_id"])
	}
}

func TestUserDocument_RoundTrip(t *testing.T) {
	user := &domain.User{
		ID:             "3b0c5a52-6f0e-4c1a-9f61-2f7f1d0f6a10",
		Email:          "owner@agency.io",
		FullName:       "Olga",
		Company:        "Agency",
		PasswordDigest: "$2a$12$digest",
		Role:           domain.RoleAgencyOwner,
		UpdatedAt:      time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
	}

	raw, err := bson.Marshal(toDocument(user))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc userDocument
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got := toDomain(doc)
	if !got.UpdatedAt.Equal(user.UpdatedAt) {
		t.Errorf("expected updatedAt %v, got %v", user.UpdatedAt, got.UpdatedAt)
	}
	got.UpdatedAt = user.UpdatedAt
	if *got != *user {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", *got, *user)
	}
}
