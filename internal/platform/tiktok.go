package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/sahilm27/postpilot/configs"
	"github.com/sahilm27/postpilot/internal/models"
	"github.com/sahilm27/postpilot/internal/repository"
	"github.com/sahilm27/postpilot/internal/transfer"
	"github.com/sahilm27/postpilot/pkg/utils"
)

const (
	tiktokTokenURL     = "https://open.tiktokapis.com/v2/oauth/token/"
	tiktokVideoInitURL = "https://open.tiktokapis.com/v2/post/publish/video/init/"
	tiktokPhotoInitURL = "https://open.tiktokapis.com/v2/post/publish/content/init/"
	tiktokUserInfoURL  = "https://open.tiktokapis.com/v2/user/info/?fields=open_id,follower_count,following_count,video_count"
	tiktokVideoListURL = "https://open.tiktokapis.com/v2/video/query/?fields=id,view_count,like_count,comment_count,share_count"
)

type tiktokAdapter struct {
	cfg config.Config
	sa  repository.SocialAccountRepository
}

func NewTiktokAdapter(cfg config.Config, sa repository.SocialAccountRepository) Adapter {
	return &tiktokAdapter{cfg: cfg, sa: sa}
}

func (a *tiktokAdapter) Name() string { return "tiktok" }

func (a *tiktokAdapter) Publish(ctx context.Context, acc *models.SocialAccount, req *PublishRequest) (*PublishResult, error) {
	result, err := a.publish(ctx, acc, req)
	if err != nil && isUnauthorized(err) {
		if ok, _ := a.RefreshCredentials(ctx, acc); ok {
			return a.publish(ctx, acc, req)
		}
	}
	return result, err
}

func (a *tiktokAdapter) publish(ctx context.Context, acc *models.SocialAccount, req *PublishRequest) (*PublishResult, error) {
	if len(req.Media) == 0 {
		return nil, Permanent("tiktok: post has no media")
	}

	token, err := utils.Decrypt(acc.AccessToken, []byte(a.cfg.SecretKey))
	if err != nil {
		return nil, Permanent("tiktok: decrypt access token: %v", err)
	}

	if req.PostType == models.PostTypeMultiple {
		return a.publishPhotos(ctx, token, req)
	}
	return a.publishVideo(ctx, token, req)
}

func (a *tiktokAdapter) publishVideo(ctx context.Context, token string, req *PublishRequest) (*PublishResult, error) {
	if !strings.HasPrefix(req.Media[0].MIMEType, "video/") {
		return nil, Permanent("tiktok: single posts must be video, got %s", req.Media[0].MIMEType)
	}

	upload := transfer.VideoUploadRequest{
		PostInfo: transfer.VideoPostInfo{
			Title:                 req.Caption,
			PrivacyLevel:          "PUBLIC_TO_EVERYONE",
			VideoCoverTimestampMs: 1000,
		},
		SourceInfo: transfer.VideoSourceInfo{
			Source:   "PULL_FROM_URL",
			VideoURL: req.Media[0].URL,
		},
	}

	var resp transfer.TikTokUploadResponse
	if err := doJSON(ctx, http.MethodPost, tiktokVideoInitURL, "tiktok", token, upload, &resp); err != nil {
		return nil, err
	}
	if resp.Error.Code != "" && resp.Error.Code != "ok" {
		return nil, tiktokAPIError(resp.Error)
	}
	if resp.Data.PublishID == "" {
		return nil, Retryable("tiktok: no publish id returned")
	}

	return &PublishResult{PlatformContentID: resp.Data.PublishID}, nil
}

func (a *tiktokAdapter) publishPhotos(ctx context.Context, token string, req *PublishRequest) (*PublishResult, error) {
	photoURLs := make([]string, 0, len(req.Media))
	for _, m := range req.Media {
		if !strings.HasPrefix(m.MIMEType, "image/") {
			return nil, Permanent("tiktok: carousel posts must be images, got %s", m.MIMEType)
		}
		photoURLs = append(photoURLs, m.URL)
	}

	upload := transfer.PhotUploadRequest{
		PostInfo: transfer.PhotoPostInfo{
			Title:        req.Title,
			Description:  req.Caption,
			PrivacyLevel: "PUBLIC_TO_EVERYONE",
			AutoAddMusic: true,
		},
		SourceInfo: transfer.PhotoSourceInfo{
			Source:      "PULL_FROM_URL",
			PhotoImages: photoURLs,
		},
		PostMode:  "DIRECT_POST",
		MediaType: "PHOTO",
	}

	var resp transfer.TikTokUploadResponse
	if err := doJSON(ctx, http.MethodPost, tiktokPhotoInitURL, "tiktok", token, upload, &resp); err != nil {
		return nil, err
	}
	if resp.Error.Code != "" && resp.Error.Code != "ok" {
		return nil, tiktokAPIError(resp.Error)
	}
	if resp.Data.PublishID == "" {
		return nil, Retryable("tiktok: no publish id returned")
	}

	return &PublishResult{PlatformContentID: resp.Data.PublishID}, nil
}

func (a *tiktokAdapter) AccountMetrics(ctx context.Context, acc *models.SocialAccount) (*AccountMetrics, error) {
	token, err := utils.Decrypt(acc.AccessToken, []byte(a.cfg.SecretKey))
	if err != nil {
		return nil, Permanent("tiktok: decrypt access token: %v", err)
	}

	var resp struct {
		Data struct {
			User struct {
				FollowerCount  int64 `json:"follower_count"`
				FollowingCount int64 `json:"following_count"`
				VideoCount     int64 `json:"video_count"`
			} `json:"user"`
		} `json:"data"`
		Error transfer.TiktokError `json:"error"`
	}
	if err := doJSON(ctx, http.MethodGet, tiktokUserInfoURL, "tiktok", token, nil, &resp); err != nil {
		return nil, err
	}

	return &AccountMetrics{
		Followers:  resp.Data.User.FollowerCount,
		Following:  resp.Data.User.FollowingCount,
		MediaCount: resp.Data.User.VideoCount,
	}, nil
}

func (a *tiktokAdapter) ContentMetrics(ctx context.Context, acc *models.SocialAccount, platformContentID string) (*ContentMetrics, error) {
	token, err := utils.Decrypt(acc.AccessToken, []byte(a.cfg.SecretKey))
	if err != nil {
		return nil, Permanent("tiktok: decrypt access token: %v", err)
	}

	payload := map[string]any{
		"filters": map[string]any{"video_ids": []string{platformContentID}},
	}
	var resp struct {
		Data struct {
			Videos []struct {
				ViewCount    int64 `json:"view_count"`
				LikeCount    int64 `json:"like_count"`
				CommentCount int64 `json:"comment_count"`
				ShareCount   int64 `json:"share_count"`
			} `json:"videos"`
		} `json:"data"`
	}
	if err := doJSON(ctx, http.MethodPost, tiktokVideoListURL, "tiktok", token, payload, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data.Videos) == 0 {
		return nil, Permanent("tiktok: video %s not found", platformContentID)
	}

	v := resp.Data.Videos[0]
	return &ContentMetrics{Views: v.ViewCount, Likes: v.LikeCount, Comments: v.CommentCount, Shares: v.ShareCount}, nil
}

func (a *tiktokAdapter) RefreshCredentials(ctx context.Context, acc *models.SocialAccount) (bool, error) {
	decryptedRefreshToken, err := utils.Decrypt(acc.RefreshToken, []byte(a.cfg.SecretKey))
	if err != nil {
		return false, err
	}

	data := url.Values{}
	data.Set("client_key", a.cfg.TiktokClientKey)
	data.Set("client_secret", a.cfg.TiktokClientSecret)
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", decryptedRefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tiktokTokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("tiktok token refresh returned %d: %s", resp.StatusCode, body)
	}

	var tokenResponse transfer.TiktokTokenResponse
	if err := jsonDecode(resp.Body, &tokenResponse); err != nil {
		return false, err
	}
	if tokenResponse.AccessToken == "" {
		return false, errors.New("tiktok token refresh returned empty access token")
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(tokenResponse.AccessToken), []byte(a.cfg.SecretKey))
	if err != nil {
		return false, err
	}
	encryptedRefreshToken, err := utils.Encrypt([]byte(tokenResponse.RefreshToken), []byte(a.cfg.SecretKey))
	if err != nil {
		return false, err
	}

	updated := models.SocialAccount{
		AccessToken:    encryptedAccessToken,
		RefreshToken:   encryptedRefreshToken,
		TokenExpiresAt: time.Now().Add(time.Duration(tokenResponse.ExpiresIn) * time.Second),
	}
	if err := a.sa.SetToken(ctx, acc.UserID, acc.AccessToken, &updated); err != nil {
		return false, err
	}

	// keep the in-memory account usable for the retry cycle
	acc.AccessToken = encryptedAccessToken
	acc.RefreshToken = encryptedRefreshToken
	acc.TokenExpiresAt = updated.TokenExpiresAt
	return true, nil
}

func tiktokAPIError(e transfer.TiktokError) error {
	switch e.Code {
	case "rate_limit_exceeded", "internal_error":
		return Retryable("tiktok: %s: %s", e.Code, e.Message)
	default:
		return Permanent("tiktok: %s: %s", e.Code, e.Message)
	}
}
