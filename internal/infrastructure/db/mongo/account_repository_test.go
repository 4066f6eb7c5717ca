package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/adonwheels/identity-api/internal/core/domain"
)

func newPublisher() *domain.Account {
	return &domain.Account{
		Kind:         domain.KindPublisher,
		Name:         "Road Runner",
		Email:        "rr@example.com",
		PasswordHash: "$2a$10$hash",
		Profile: domain.PublisherProfile{VehicleDetails: domain.VehicleDetails{
			VehicleType:        "truck",
			RegistrationNumber: "KA-01-1234",
		}},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestAccountRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create returns the inserted id", func(mt *mtest.T) {
		repo := NewAccountRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		created, err := repo.Create(context.Background(), newPublisher())
		require.NoError(mt, err)
		_, err = primitive.ObjectIDFromHex(created.ID)
		assert.NoError(mt, err)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "insert", started.CommandName)
		assert.Equal(mt, "publishers", started.Command.Lookup("insert").StringValue())
	})

	mt.Run("duplicate key maps to duplicate email", func(mt *mtest.T) {
		repo := NewAccountRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: publishers index: email_unique",
		}))

		_, err := repo.Create(context.Background(), newPublisher())
		assert.ErrorIs(mt, err, domain.ErrDuplicateEmail)
	})

	mt.Run("other write errors are storage failures", func(mt *mtest.T) {
		repo := NewAccountRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    8000,
			Message: "quota exceeded",
		}))

		_, err := repo.Create(context.Background(), newPublisher())
		assert.ErrorIs(mt, err, domain.ErrStorage)
		assert.NotErrorIs(mt, err, domain.ErrDuplicateEmail)
	})

	mt.Run("email exists", func(mt *mtest.T) {
		repo := NewAccountRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.admins", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}}))

		ok, err := repo.EmailExists(context.Background(), domain.KindAdmin, "a@x.com")
		require.NoError(mt, err)
		assert.True(mt, ok)
	})

	mt.Run("email absent", func(mt *mtest.T) {
		repo := NewAccountRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.admins", mtest.FirstBatch))

		ok, err := repo.EmailExists(context.Background(), domain.KindAdmin, "a@x.com")
		require.NoError(mt, err)
		assert.False(mt, ok)
	})

	mt.Run("find by email decodes the kind profile", func(mt *mtest.T) {
		repo := NewAccountRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.publishers", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "name", Value: "Road Runner"},
			{Key: "email", Value: "rr@example.com"},
			{Key: "password", Value: "$2a$10$hash"},
			{Key: "vehicleDetails", Value: bson.D{
				{Key: "vehicleType", Value: "truck"},
				{Key: "registrationNumber", Value: "KA-01-1234"},
			}},
		}))

		acc, err := repo.FindByEmail(context.Background(), domain.KindPublisher, "rr@example.com")
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), acc.ID)
		assert.Equal(mt, domain.KindPublisher, acc.Kind)
		assert.Equal(mt, "$2a$10$hash", acc.PasswordHash)

		profile, ok := acc.Profile.(domain.PublisherProfile)
		require.True(mt, ok)
		assert.Equal(mt, "KA-01-1234", profile.VehicleDetails.RegistrationNumber)
	})

	mt.Run("find by email not found", func(mt *mtest.T) {
		repo := NewAccountRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.advertisers", mtest.FirstBatch))

		_, err := repo.FindByEmail(context.Background(), domain.KindAdvertiser, "ghost@x.com")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})

	mt.Run("find by malformed id is not found", func(mt *mtest.T) {
		repo := NewAccountRepository(mt.DB)

		_, err := repo.FindByID(context.Background(), domain.KindAdmin, "not-an-object-id")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})

	mt.Run("list", func(mt *mtest.T) {
		repo := NewAccountRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.bodyshops", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "name", Value: "Shop A"}, {Key: "address", Value: "1 Main St"}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "name", Value: "Shop B"}},
		))

		accounts, err := repo.List(context.Background(), domain.KindBodyShop)
		require.NoError(mt, err)
		require.Len(mt, accounts, 2)
		assert.Equal(mt, domain.BodyShopProfile{Address: "1 Main St"}, accounts[0].Profile)
		assert.Empty(mt, accounts[0].PasswordHash)
	})
}

func TestToDocument_ProfileFields(t *testing.T) {
	adv := &domain.Account{Kind: domain.KindAdvertiser, Profile: domain.AdvertiserProfile{CompanyName: "Acme"}}
	assert.Equal(t, "Acme", toDocument(adv).CompanyName)

	shop := &domain.Account{Kind: domain.KindBodyShop, Profile: domain.BodyShopProfile{Address: "1 Main St"}}
	doc := toDocument(shop)
	assert.Equal(t, "1 Main St", doc.Address)
	assert.Nil(t, doc.VehicleDetails)

	admin := toDocument(&domain.Account{Kind: domain.KindAdmin, Profile: domain.AdminProfile{}})
	assert.Empty(t, admin.CompanyName)
	assert.Empty(t, admin.Address)
}
