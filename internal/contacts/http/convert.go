package http

import (
	"github.com/aussiebroadwan/contacts/internal/contacts/domain"
	"github.com/aussiebroadwan/contacts/internal/contacts/service"
	"github.com/aussiebroadwan/contacts/pkg/contactsdk"
)

func toUserResponse(p domain.Profile) contactsdk.UserResponse {
	return contactsdk.UserResponse{
		ID:        p.ID,
		Email:     p.Email,
		Username:  p.Username,
		Role:      string(p.Role),
		Verified:  p.Verified,
		AvatarURL: p.AvatarURL,
		CreatedAt: p.CreatedAt,
	}
}

func toTokenResponse(pair domain.TokenPair) contactsdk.TokenResponse {
	return contactsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
	}
}

func toContactResponse(c domain.Contact) contactsdk.ContactResponse {
	resp := contactsdk.ContactResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Note:      c.Note,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.Birthday != nil {
		resp.Birthday = c.Birthday.Format(domain.DateLayout)
	}
	return resp
}

func toContactResponses(cs []domain.Contact) []contactsdk.ContactResponse {
	out := make([]contactsdk.ContactResponse, len(cs))
	for i, c := range cs {
		out[i] = toContactResponse(c)
	}
	return out
}

func fromContactRequest(req contactsdk.ContactRequest) service.ContactInput {
	return service.ContactInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Birthday:  req.Birthday,
		Note:      req.Note,
	}
}

func fromContactPatch(req contactsdk.ContactPatch) service.ContactPatchInput {
	return service.ContactPatchInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Birthday:  req.Birthday,
		Note:      req.Note,
	}
}
