package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	config "github.com/sahilm27/postpilot/configs"
	"github.com/sahilm27/postpilot/internal/models"
	"github.com/sahilm27/postpilot/internal/repository"
	"github.com/sahilm27/postpilot/pkg/utils"
)

const instagramGraphURL = "https://graph.instagram.com/v21.0"

type instagramAdapter struct {
	cfg config.Config
	sa  repository.SocialAccountRepository
}

func NewInstagramAdapter(cfg config.Config, sa repository.SocialAccountRepository) Adapter {
	return &instagramAdapter{cfg: cfg, sa: sa}
}

func (a *instagramAdapter) Name() string { return "instagram" }

func (a *instagramAdapter) Publish(ctx context.Context, acc *models.SocialAccount, req *PublishRequest) (*PublishResult, error) {
	result, err := a.publish(ctx, acc, req)
	if err != nil && isUnauthorized(err) {
		if ok, _ := a.RefreshCredentials(ctx, acc); ok {
			return a.publish(ctx, acc, req)
		}
	}
	return result, err
}

func (a *instagramAdapter) publish(ctx context.Context, acc *models.SocialAccount, req *PublishRequest) (*PublishResult, error) {
	if len(req.Media) == 0 {
		return nil, Permanent("instagram: post has no media")
	}

	token, err := utils.Decrypt(acc.AccessToken, []byte(a.cfg.SecretKey))
	if err != nil {
		return nil, Permanent("instagram: decrypt access token: %v", err)
	}

	var containerID string
	if req.PostType == models.PostTypeMultiple {
		containerID, err = a.createCarouselContainer(ctx, acc.AccountID, token, req)
	} else {
		containerID, err = a.createContainer(ctx, acc.AccountID, token, req.Media[0], req.Caption, false)
	}
	if err != nil {
		return nil, err
	}

	mediaID, err := a.publishContainer(ctx, acc.AccountID, token, containerID)
	if err != nil {
		return nil, err
	}
	return &PublishResult{PlatformContentID: mediaID}, nil
}

// createContainer registers one media object with the Graph API and returns
// the container id to publish.
func (a *instagramAdapter) createContainer(ctx context.Context, accountID, token string, media MediaRef, caption string, carouselItem bool) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/media", instagramGraphURL, accountID)

	payload := map[string]any{"access_token": token}
	switch {
	case strings.HasPrefix(media.MIMEType, "image/"):
		payload["image_url"] = media.URL
	case strings.HasPrefix(media.MIMEType, "video/"):
		payload["media_type"] = "REELS"
		payload["video_url"] = media.URL
	default:
		return "", Permanent("instagram: unsupported media type %s", media.MIMEType)
	}
	if carouselItem {
		payload["is_carousel_item"] = true
	} else if caption != "" {
		payload["caption"] = caption
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := doJSON(ctx, http.MethodPost, endpoint, "instagram", "", payload, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", Retryable("instagram: no container id returned")
	}
	return result.ID, nil
}

func (a *instagramAdapter) createCarouselContainer(ctx context.Context, accountID, token string, req *PublishRequest) (string, error) {
	children := make([]string, 0, len(req.Media))
	for _, media := range req.Media {
		id, err := a.createContainer(ctx, accountID, token, media, "", true)
		if err != nil {
			return "", err
		}
		children = append(children, id)
	}

	endpoint := fmt.Sprintf("%s/%s/media", instagramGraphURL, accountID)
	payload := map[string]any{
		"media_type":   "CAROUSEL",
		"caption":      req.Caption,
		"children":     children,
		"access_token": token,
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := doJSON(ctx, http.MethodPost, endpoint, "instagram", "", payload, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", Retryable("instagram: no carousel container id returned")
	}
	return result.ID, nil
}

func (a *instagramAdapter) publishContainer(ctx context.Context, accountID, token, containerID string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/media_publish", instagramGraphURL, accountID)
	payload := map[string]string{
		"creation_id":  containerID,
		"access_token": token,
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := doJSON(ctx, http.MethodPost, endpoint, "instagram", "", payload, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", Retryable("instagram: publish returned no media id")
	}
	return result.ID, nil
}

func (a *instagramAdapter) AccountMetrics(ctx context.Context, acc *models.SocialAccount) (*AccountMetrics, error) {
	token, err := utils.Decrypt(acc.AccessToken, []byte(a.cfg.SecretKey))
	if err != nil {
		return nil, Permanent("instagram: decrypt access token: %v", err)
	}

	endpoint := fmt.Sprintf("%s/%s?fields=followers_count,follows_count,media_count&access_token=%s", instagramGraphURL, acc.AccountID, token)
	var result struct {
		FollowersCount int64 `json:"followers_count"`
		FollowsCount   int64 `json:"follows_count"`
		MediaCount     int64 `json:"media_count"`
	}
	if err := doJSON(ctx, http.MethodGet, endpoint, "instagram", "", nil, &result); err != nil {
		return nil, err
	}

	return &AccountMetrics{
		Followers:  result.FollowersCount,
		Following:  result.FollowsCount,
		MediaCount: result.MediaCount,
	}, nil
}

func (a *instagramAdapter) ContentMetrics(ctx context.Context, acc *models.SocialAccount, platformContentID string) (*ContentMetrics, error) {
	token, err := utils.Decrypt(acc.AccessToken, []byte(a.cfg.SecretKey))
	if err != nil {
		return nil, Permanent("instagram: decrypt access token: %v", err)
	}

	endpoint := fmt.Sprintf("%s/%s/insights?metric=views,likes,comments,shares&access_token=%s", instagramGraphURL, platformContentID, token)
	var result struct {
		Data []struct {
			Name   string `json:"name"`
			Values []struct {
				Value int64 `json:"value"`
			} `json:"values"`
		} `json:"data"`
	}
	if err := doJSON(ctx, http.MethodGet, endpoint, "instagram", "", nil, &result); err != nil {
		return nil, err
	}

	var metrics ContentMetrics
	for _, m := range result.Data {
		if len(m.Values) == 0 {
			continue
		}
		v := m.Values[0].Value
		switch m.Name {
		case "views":
			metrics.Views = v
		case "likes":
			metrics.Likes = v
		case "comments":
			metrics.Comments = v
		case "shares":
			metrics.Shares = v
		}
	}
	return &metrics, nil
}

func (a *instagramAdapter) RefreshCredentials(ctx context.Context, acc *models.SocialAccount) (bool, error) {
	decryptedToken, err := utils.Decrypt(acc.RefreshToken, []byte(a.cfg.SecretKey))
	if err != nil {
		return false, err
	}

	endpoint := fmt.Sprintf("https://graph.instagram.com/refresh_access_token?grant_type=ig_refresh_token&access_token=%s", decryptedToken)
	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := doJSON(ctx, http.MethodGet, endpoint, "instagram", "", nil, &result); err != nil {
		return false, err
	}
	if result.AccessToken == "" {
		return false, errors.New("instagram token refresh returned empty access token")
	}

	encryptedToken, err := utils.Encrypt([]byte(result.AccessToken), []byte(a.cfg.SecretKey))
	if err != nil {
		return false, err
	}

	// Instagram long-lived tokens refresh into themselves; the same value
	// serves as both access and refresh token.
	updated := models.SocialAccount{
		AccessToken:    encryptedToken,
		RefreshToken:   encryptedToken,
		TokenExpiresAt: time.Now().Add(time.Duration(result.ExpiresIn) * time.Second),
	}
	if err := a.sa.SetToken(ctx, acc.UserID, acc.RefreshToken, &updated); err != nil {
		return false, err
	}

	acc.AccessToken = encryptedToken
	acc.RefreshToken = encryptedToken
	acc.TokenExpiresAt = updated.TokenExpiresAt
	return true, nil
}
