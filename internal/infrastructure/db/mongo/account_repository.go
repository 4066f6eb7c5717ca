package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adonwheels/identity-api/internal/core/domain"
)

// collectionNames maps each kind to its own collection.
var collectionNames = map[domain.Kind]string{
	domain.KindAdmin:      "admins",
	domain.KindAdvertiser: "advertisers",
	domain.KindPublisher:  "publishers",
	domain.KindBodyShop:   "bodyshops",
}

// AccountRepository stores accounts in four collections, each with a unique
// index on email.
type AccountRepository struct {
	colls map[domain.Kind]*mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	colls := make(map[domain.Kind]*mongo.Collection, len(collectionNames))
	for kind, name := range collectionNames {
		colls[kind] = db.Collection(name)
	}
	return &AccountRepository{colls: colls}
}

type vehicleDocument struct {
	VehicleType        string `bson:"vehicleType,omitempty"`
	Model              string `bson:"model,omitempty"`
	RegistrationNumber string `bson:"registrationNumber"`
}

type accountDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Name           string             `bson:"name"`
	Email          string             `bson:"email"`
	Password       string             `bson:"password"`
	ContactNumber  string             `bson:"contactNumber,omitempty"`
	CompanyName    string             `bson:"companyName,omitempty"`
	VehicleDetails *vehicleDocument   `bson:"vehicleDetails,omitempty"`
	Address        string             `bson:"address,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt"`
}

func (r *AccountRepository) coll(kind domain.Kind) (*mongo.Collection, error) {
	c, ok := r.colls[kind]
	if !ok {
		return nil, domain.ErrInvalidKind
	}
	return c, nil
}

// EmailExists reports whether an account with email exists in the collection of kind.
func (r *AccountRepository) EmailExists(ctx context.Context, kind domain.Kind, email string) (bool, error) {
	c, err := r.coll(kind)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	err = c.FindOne(ctx, bson.M{"email": email}, opts).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: lookup email in %s: %w", domain.ErrStorage, c.Name(), err)
	}
	return true, nil
}

// Create inserts the account into the collection of its kind. A unique index
// violation on email is reported as domain.ErrDuplicateEmail.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	c, err := r.coll(account.Kind)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := c.InsertOne(ctx, toDocument(account))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("%w: insert into %s: %w", domain.ErrStorage, c.Name(), err)
	}

	created := *account
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, kind domain.Kind, email string) (*domain.Account, error) {
	return r.findOne(ctx, kind, bson.M{"email": email})
}

func (r *AccountRepository) FindByID(ctx context.Context, kind domain.Kind, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, kind, bson.M{"_id": oid})
}

// List returns all accounts of kind, oldest first.
func (r *AccountRepository) List(ctx context.Context, kind domain.Kind) ([]*domain.Account, error) {
	c, err := r.coll(kind)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetProjection(bson.M{"password": 0})
	cur, err := c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", domain.ErrStorage, c.Name(), err)
	}

	var docs []accountDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", domain.ErrStorage, c.Name(), err)
	}

	accounts := make([]*domain.Account, 0, len(docs))
	for i := range docs {
		accounts = append(accounts, toDomain(kind, &docs[i]))
	}
	return accounts, nil
}

// EnsureIndexes creates the unique email index on every account collection.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for _, c := range r.colls {
		_, err := c.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		})
		if err != nil {
			return fmt.Errorf("create email index on %s: %w", c.Name(), err)
		}
	}
	return nil
}

func (r *AccountRepository) findOne(ctx context.Context, kind domain.Kind, filter bson.M) (*domain.Account, error) {
	c, err := r.coll(kind)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc accountDocument
	if err := c.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: find in %s: %w", domain.ErrStorage, c.Name(), err)
	}
	return toDomain(kind, &doc), nil
}

func toDocument(a *domain.Account) accountDocument {
	doc := accountDocument{
		Name:          a.Name,
		Email:         a.Email,
		Password:      a.PasswordHash,
		ContactNumber: a.ContactNumber,
		CreatedAt:     a.CreatedAt.UTC(),
	}

	switch p := a.Profile.(type) {
	case domain.AdvertiserProfile:
		doc.CompanyName = p.CompanyName
	case domain.PublisherProfile:
		doc.VehicleDetails = &vehicleDocument{
			VehicleType:        p.VehicleDetails.VehicleType,
			Model:              p.VehicleDetails.Model,
			RegistrationNumber: p.VehicleDetails.RegistrationNumber,
		}
	case domain.BodyShopProfile:
		doc.Address = p.Address
	}
	return doc
}

func toDomain(kind domain.Kind, doc *accountDocument) *domain.Account {
	a := &domain.Account{
		ID:            doc.ID.Hex(),
		Kind:          kind,
		Name:          doc.Name,
		Email:         doc.Email,
		PasswordHash:  doc.Password,
		ContactNumber: doc.ContactNumber,
		CreatedAt:     doc.CreatedAt.UTC(),
	}

	switch kind {
	case domain.KindAdmin:
		a.Profile = domain.AdminProfile{}
	case domain.KindAdvertiser:
		a.Profile = domain.AdvertiserProfile{CompanyName: doc.CompanyName}
	case domain.KindPublisher:
		var vd domain.VehicleDetails
		if doc.VehicleDetails != nil {
			vd = domain.VehicleDetails{
				VehicleType:        doc.VehicleDetails.VehicleType,
				Model:              doc.VehicleDetails.Model,
				RegistrationNumber: doc.VehicleDetails.RegistrationNumber,
			}
		}
		a.Profile = domain.PublisherProfile{VehicleDetails: vd}
	case domain.KindBodyShop:
		a.Profile = domain.BodyShopProfile{Address: doc.Address}
	}
	return a
}
