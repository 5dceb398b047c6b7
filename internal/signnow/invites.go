// internal/signnow/invites.go
package signnow

import (
	"context"
	"net/http"

	"bondpacket/internal/models"
)

// inviteRecipient is one entry of a role-based invite request.
type inviteRecipient struct {
	Email          string `json:"email,omitempty"`
	PhoneNumber    string `json:"phone_invite,omitempty"`
	Role           string `json:"role"`
	Order          int    `json:"order"`
	ExpirationDays int    `json:"expiration_days,omitempty"`
	Reminder       int    `json:"reminder,omitempty"`
}

type inviteRequest struct {
	DocumentID string            `json:"document_id"`
	From       string            `json:"from,omitempty"`
	To         []inviteRecipient `json:"to"`
}

// SignerError ties an invite delivery failure to the signer it was for.
type SignerError struct {
	Signer models.Signer
	Err    error
}

// SendEmailInvites creates one field invite per signer by email. Each
// signer is invited in its own request so one rejected address cannot
// block the rest; failures come back per signer.
func (c *Client) SendEmailInvites(ctx context.Context, documentID, from string, signers []models.Signer) []SignerError {
	var failed []SignerError
	for _, s := range signers {
		rec := inviteRecipient{
			Email:          s.Email,
			Role:           s.Role,
			Order:          s.Order,
			ExpirationDays: c.cfg.InviteExpirationDays,
			Reminder:       c.cfg.InviteReminderDays,
		}
		if err := c.sendInvite(ctx, documentID, from, rec); err != nil {
			failed = append(failed, SignerError{Signer: s, Err: err})
		}
	}
	return failed
}

// SendSMSInvites creates one field invite per signer by phone number.
func (c *Client) SendSMSInvites(ctx context.Context, documentID, from string, signers []models.Signer) []SignerError {
	var failed []SignerError
	for _, s := range signers {
		rec := inviteRecipient{
			PhoneNumber:    s.Phone,
			Role:           s.Role,
			Order:          s.Order,
			ExpirationDays: c.cfg.InviteExpirationDays,
			Reminder:       c.cfg.InviteReminderDays,
		}
		if err := c.sendInvite(ctx, documentID, from, rec); err != nil {
			failed = append(failed, SignerError{Signer: s, Err: err})
		}
	}
	return failed
}

func (c *Client) sendInvite(ctx context.Context, documentID, from string, rec inviteRecipient) error {
	body := inviteRequest{
		DocumentID: documentID,
		From:       from,
		To:         []inviteRecipient{rec},
	}
	return c.doJSON(ctx, http.MethodPost, "/document/"+documentID+"/invite", body, nil)
}

type embeddedInvite struct {
	Email      string `json:"email"`
	Role       string `json:"role"`
	Order      int    `json:"order"`
	AuthMethod string `json:"auth_method"`
}

// EmbeddedLink creates an embedded (in-office kiosk) signing invite for
// one signer and returns the short-lived signing URL. A document that
// already carries an invite gets its invites cancelled and the creation
// retried once.
func (c *Client) EmbeddedLink(ctx context.Context, documentID string, signer models.Signer) (string, error) {
	inviteID, err := c.createEmbeddedInvite(ctx, documentID, signer)
	if err != nil {
		apiErr, ok := err.(*APIError)
		if !ok || !apiErr.IsInviteConflict() {
			return "", err
		}
		c.log.Warn("embedded invite conflict, cancelling existing invites", map[string]interface{}{
			"documentId": documentID,
		})
		if cancelErr := c.CancelInvites(ctx, documentID); cancelErr != nil {
			return "", cancelErr
		}
		inviteID, err = c.createEmbeddedInvite(ctx, documentID, signer)
		if err != nil {
			return "", err
		}
	}

	linkBody := struct {
		AuthMethod     string `json:"auth_method"`
		LinkExpiration int    `json:"link_expiration"`
	}{
		AuthMethod:     "none",
		LinkExpiration: c.cfg.LinkExpirationMinutes,
	}
	var linkResp struct {
		Data struct {
			Link string `json:"link"`
		} `json:"data"`
	}
	path := "/v2/documents/" + documentID + "/embedded-invites/" + inviteID + "/link"
	if err := c.doJSON(ctx, http.MethodPost, path, linkBody, &linkResp); err != nil {
		return "", err
	}
	return linkResp.Data.Link, nil
}

func (c *Client) createEmbeddedInvite(ctx context.Context, documentID string, signer models.Signer) (string, error) {
	body := struct {
		Invites []embeddedInvite `json:"invites"`
	}{
		Invites: []embeddedInvite{{
			Email:      signer.Email,
			Role:       signer.Role,
			Order:      signer.Order,
			AuthMethod: "none",
		}},
	}
	var resp struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v2/documents/"+documentID+"/embedded-invites", body, &resp); err != nil {
		return "", err
	}
	if len(resp.Data) == 0 {
		return "", &APIError{Status: http.StatusOK, Body: "embedded invite response carried no invite id"}
	}
	return resp.Data[0].ID, nil
}
