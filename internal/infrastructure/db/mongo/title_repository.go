package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yamdb/catalogue-api/internal/core/domain"
	"github.com/yamdb/catalogue-api/internal/core/ports"
)

type TitleRepository struct {
	db         *mongo.Database
	coll       *mongo.Collection
	categories *TaxonomyRepository
	genres     *TaxonomyRepository
}

func NewTitleRepository(db *mongo.Database) *TitleRepository {
	return &TitleRepository{
		db:         db,
		coll:       db.Collection(collectionTitles),
		categories: NewCategoryRepository(db),
		genres:     NewGenreRepository(db),
	}
}

type mongoTitle struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Year        int                `bson:"year"`
	Description string             `bson:"description,omitempty"`
	Category    string             `bson:"category,omitempty"`
	Genres      []string           `bson:"genres"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func toMongoTitle(t *domain.Title) mongoTitle {
	return mongoTitle{
		Name:        t.Name,
		Year:        t.Year,
		Description: t.Description,
		Category:    t.CategorySlug(),
		Genres:      t.GenreSlugs(),
		CreatedAt:   t.CreatedAt,
	}
}

func (r *TitleRepository) Create(ctx context.Context, t *domain.Title) (*domain.Title, error) {
	doc := toMongoTitle(t)
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert title: %w", err)
	}
	out := *t
	out.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &out, nil
}

func (r *TitleRepository) FindByID(ctx context.Context, id string) (*domain.Title, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrTitleNotFound
	}
	var doc mongoTitle
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTitleNotFound
		}
		return nil, fmt.Errorf("find title: %w", err)
	}
	titles, err := r.hydrate(ctx, []mongoTitle{doc})
	if err != nil {
		return nil, err
	}
	return titles[0], nil
}

func (r *TitleRepository) List(ctx context.Context, f ports.TitleFilter) ([]*domain.Title, int64, error) {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Genre != "" {
		filter["genres"] = f.Genre
	}
	if f.Name != "" {
		filter["name"] = contains(f.Name)
	}
	if f.Year != 0 {
		filter["year"] = f.Year
	}
	docs, total, err := findPage[mongoTitle](ctx, r.coll, filter, f.PageRequest,
		bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	if err != nil {
		return nil, 0, err
	}
	titles, err := r.hydrate(ctx, docs)
	if err != nil {
		return nil, 0, err
	}
	return titles, total, nil
}

func (r *TitleRepository) Update(ctx context.Context, t *domain.Title) (*domain.Title, error) {
	oid, ok := objectID(t.ID)
	if !ok {
		return nil, domain.ErrTitleNotFound
	}
	doc := toMongoTitle(t)
	set := bson.M{
		"name":        doc.Name,
		"year":        doc.Year,
		"description": doc.Description,
		"genres":      doc.Genres,
	}
	update := bson.M{"$set": set}
	if doc.Category == "" {
		update["$unset"] = bson.M{"category": ""}
	} else {
		set["category"] = doc.Category
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return nil, fmt.Errorf("update title: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrTitleNotFound
	}
	out := *t
	return &out, nil
}

// Delete removes the title along with its reviews and their comments.
func (r *TitleRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrTitleNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete title: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTitleNotFound
	}
	return deleteReviews(ctx, r.db, bson.M{"title_id": oid})
}

// hydrate resolves the stored slugs into taxa with one query per kind.
func (r *TitleRepository) hydrate(ctx context.Context, docs []mongoTitle) ([]*domain.Title, error) {
	var catSlugs, genreSlugs []string
	for _, d := range docs {
		if d.Category != "" {
			catSlugs = append(catSlugs, d.Category)
		}
		genreSlugs = append(genreSlugs, d.Genres...)
	}
	cats, err := r.categories.FindBySlugs(ctx, catSlugs)
	if err != nil {
		return nil, err
	}
	genres, err := r.genres.FindBySlugs(ctx, genreSlugs)
	if err != nil {
		return nil, err
	}
	catBySlug := indexTaxa(cats)
	genreBySlug := indexTaxa(genres)

	out := make([]*domain.Title, len(docs))
	for i, d := range docs {
		t := &domain.Title{
			ID:          d.ID.Hex(),
			Name:        d.Name,
			Year:        d.Year,
			Description: d.Description,
			Genres:      make([]domain.Taxon, 0, len(d.Genres)),
			CreatedAt:   d.CreatedAt,
		}
		if c, ok := catBySlug[d.Category]; ok {
			t.Category = &c
		}
		for _, slug := range d.Genres {
			if g, ok := genreBySlug[slug]; ok {
				t.Genres = append(t.Genres, g)
			}
		}
		out[i] = t
	}
	return out, nil
}

func indexTaxa(taxa []domain.Taxon) map[string]domain.Taxon {
	out := make(map[string]domain.Taxon, len(taxa))
	for _, t := range taxa {
		out[t.Slug] = t
	}
	return out
}
