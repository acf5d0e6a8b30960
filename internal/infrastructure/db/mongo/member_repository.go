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

	"github.com/99minutos/member-system/internal/core/domain"
	"github.com/99minutos/member-system/internal/core/ports"
)

const collectionMembers = "members"

// MemberRepository implements ports.MemberRepository using MongoDB.
type MemberRepository struct {
	col *mongo.Collection
}

var _ ports.MemberRepository = (*MemberRepository)(nil)

func NewMemberRepository(db *mongo.Database) *MemberRepository {
	return &MemberRepository{col: db.Collection(collectionMembers)}
}

type mongoMember struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"password_hash"`
	Nickname     string             `bson:"nickname"`
	Authorities  []string           `bson:"authorities"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func (d *mongoMember) toDomain() (*domain.Member, error) {
	authorities, err := domain.ParseAuthorities(d.Authorities)
	if err != nil {
		return nil, fmt.Errorf("decode member %s: %w", d.ID.Hex(), err)
	}
	return &domain.Member{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		Nickname:     d.Nickname,
		Authorities:  authorities,
		CreatedAt:    d.CreatedAt.UTC(),
	}, nil
}

// Create inserts a new member document.
func (r *MemberRepository) Create(ctx context.Context, m *domain.Member) (*domain.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoMember{
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		Nickname:     m.Nickname,
		Authorities:  domain.AuthorityStrings(m.Authorities),
		CreatedAt:    m.CreatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrMemberExists
		}
		return nil, fmt.Errorf("insert member: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert member: unexpected id type %T", res.InsertedID)
	}

	created := *m
	created.ID = oid.Hex()
	return &created, nil
}

// FindByID retrieves a member by its hex ObjectID. Malformed ids are reported
// as not found.
func (r *MemberRepository) FindByID(ctx context.Context, id string) (*domain.Member, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrMemberNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MemberRepository) FindByUsername(ctx context.Context, username string) (*domain.Member, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MemberRepository) findOne(ctx context.Context, filter bson.M) (*domain.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoMember
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, fmt.Errorf("find member: %w", err)
	}
	return doc.toDomain()
}

// List returns all members projected to id, username and nickname; password
// hashes and authorities never leave the database.
func (r *MemberRepository) List(ctx context.Context) ([]domain.MemberSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetProjection(bson.D{{Key: "username", Value: 1}, {Key: "nickname", Value: 1}}).
		SetSort(bson.D{{Key: "_id", Value: 1}})

	cur, err := r.col.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find members: %w", err)
	}

	var docs []mongoMember
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode members: %w", err)
	}

	out := make([]domain.MemberSummary, len(docs))
	for i, d := range docs {
		out[i] = domain.MemberSummary{ID: d.ID.Hex(), Username: d.Username, Nickname: d.Nickname}
	}
	return out, nil
}

func (r *MemberRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrMemberNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}

// EnsureIndexes creates the unique username index. The service also checks
// for an existing username before insert; the index closes the race between
// two concurrent registrations.
func (r *MemberRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("username_unique"),
	})
	return err
}
