package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yamdb/catalogue-api/internal/core/domain"
	"github.com/yamdb/catalogue-api/internal/core/ports"
)

// TaxonomyRepository stores categories or genres, one collection per kind.
// Titles reference taxa by slug.
type TaxonomyRepository struct {
	kind   domain.TaxonKind
	coll   *mongo.Collection
	titles *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *TaxonomyRepository {
	return newTaxonomyRepository(db, domain.KindCategory, collectionCategories)
}

func NewGenreRepository(db *mongo.Database) *TaxonomyRepository {
	return newTaxonomyRepository(db, domain.KindGenre, collectionGenres)
}

func newTaxonomyRepository(db *mongo.Database, kind domain.TaxonKind, coll string) *TaxonomyRepository {
	return &TaxonomyRepository{kind: kind, coll: db.Collection(coll), titles: db.Collection(collectionTitles)}
}

type mongoTaxon struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Name string             `bson:"name"`
	Slug string             `bson:"slug"`
}

func (m mongoTaxon) toDomain() domain.Taxon {
	return domain.Taxon{ID: m.ID.Hex(), Name: m.Name, Slug: m.Slug}
}

func (r *TaxonomyRepository) Create(ctx context.Context, t *domain.Taxon) (*domain.Taxon, error) {
	doc := mongoTaxon{Name: t.Name, Slug: t.Slug}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrSlugTaken
		}
		return nil, fmt.Errorf("insert %s: %w", r.kind, err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	out := doc.toDomain()
	return &out, nil
}

func (r *TaxonomyRepository) FindBySlug(ctx context.Context, slug string) (*domain.Taxon, error) {
	var doc mongoTaxon
	if err := r.coll.FindOne(ctx, bson.M{"slug": slug}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, r.kind.NotFoundErr()
		}
		return nil, fmt.Errorf("find %s: %w", r.kind, err)
	}
	out := doc.toDomain()
	return &out, nil
}

func (r *TaxonomyRepository) FindBySlugs(ctx context.Context, slugs []string) ([]domain.Taxon, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"slug": bson.M{"$in": slugs}})
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", r.kind, err)
	}
	var docs []mongoTaxon
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.kind, err)
	}
	out := make([]domain.Taxon, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (r *TaxonomyRepository) List(ctx context.Context, f ports.TaxonFilter) ([]domain.Taxon, int64, error) {
	filter := bson.M{}
	if f.Search != "" {
		filter["name"] = contains(f.Search)
	}
	docs, total, err := findPage[mongoTaxon](ctx, r.coll, filter, f.PageRequest, bson.D{{Key: "name", Value: 1}})
	if err != nil {
		return nil, 0, err
	}
	out := make([]domain.Taxon, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, total, nil
}

// Delete removes the taxon and detaches it from every title. Titles are
// never deleted along with a taxon.
func (r *TaxonomyRepository) Delete(ctx context.Context, slug string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"slug": slug})
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.kind, err)
	}
	if res.DeletedCount == 0 {
		return r.kind.NotFoundErr()
	}

	var detach bson.M
	var filter bson.M
	if r.kind == domain.KindGenre {
		filter = bson.M{"genres": slug}
		detach = bson.M{"$pull": bson.M{"genres": slug}}
	} else {
		filter = bson.M{"category": slug}
		detach = bson.M{"$unset": bson.M{"category": ""}}
	}
	if _, err := r.titles.UpdateMany(ctx, filter, detach); err != nil {
		return fmt.Errorf("detach %s from titles: %w", r.kind, err)
	}
	return nil
}
