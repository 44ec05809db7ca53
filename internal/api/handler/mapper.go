package handler

import (
	"github.com/yamdb/catalogue-api/internal/core/domain"
	"github.com/yamdb/catalogue-api/internal/core/ports"
)

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      string(u.Role),
	}
}

func (r userPatchRequest) toPatch() ports.UserPatch {
	p := ports.UserPatch{
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Bio:       r.Bio,
	}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		p.Role = &role
	}
	return p
}

func toTaxonResponse(t domain.Taxon) taxonResponse {
	return taxonResponse{Name: t.Name, Slug: t.Slug}
}

func toTitleResponse(t *domain.Title) titleResponse {
	resp := titleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genres:      make([]taxonResponse, len(t.Genres)),
	}
	if t.Category != nil {
		c := toTaxonResponse(*t.Category)
		resp.Category = &c
	}
	for i, g := range t.Genres {
		resp.Genres[i] = toTaxonResponse(g)
	}
	return resp
}

func (r titleRequest) toInput() ports.TitleInput {
	return ports.TitleInput{
		Name:        r.Name,
		Year:        r.Year,
		Description: r.Description,
		Category:    r.Category,
		Genres:      r.Genres,
	}
}

func (r titlePatchRequest) toPatch() ports.TitlePatch {
	return ports.TitlePatch{
		Name:        r.Name,
		Year:        r.Year,
		Description: r.Description,
		Category:    r.Category,
		Genres:      r.Genres,
	}
}

func toReviewResponse(r *domain.Review) reviewResponse {
	return reviewResponse{
		ID:      r.ID,
		Text:    r.Text,
		Author:  r.Author,
		Score:   r.Score,
		PubDate: r.CreatedAt,
	}
}

func toCommentResponse(c *domain.Comment) commentResponse {
	return commentResponse{
		ID:      c.ID,
		Text:    c.Text,
		Author:  c.Author,
		PubDate: c.CreatedAt,
	}
}
