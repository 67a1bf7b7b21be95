package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	config "github.com/sahilm27/postpilot/configs"
	"github.com/sahilm27/postpilot/internal/models"
	"github.com/sahilm27/postpilot/internal/repository"
	"github.com/sahilm27/postpilot/pkg/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

type youtubeAdapter struct {
	cfg config.Config
	sa  repository.SocialAccountRepository
}

func NewYoutubeAdapter(cfg config.Config, sa repository.SocialAccountRepository) Adapter {
	return &youtubeAdapter{cfg: cfg, sa: sa}
}

func (a *youtubeAdapter) Name() string { return "youtube" }

func (a *youtubeAdapter) Publish(ctx context.Context, acc *models.SocialAccount, req *PublishRequest) (*PublishResult, error) {
	result, err := a.publish(ctx, acc, req)
	if err != nil && isUnauthorized(err) {
		if ok, _ := a.RefreshCredentials(ctx, acc); ok {
			return a.publish(ctx, acc, req)
		}
	}
	return result, err
}

func (a *youtubeAdapter) publish(ctx context.Context, acc *models.SocialAccount, req *PublishRequest) (*PublishResult, error) {
	if len(req.Media) == 0 {
		return nil, Permanent("youtube: post has no media")
	}
	media := req.Media[0]
	if !strings.HasPrefix(media.MIMEType, "video/") {
		return nil, Permanent("youtube: only video uploads are supported, got %s", media.MIMEType)
	}

	service, err := a.youtubeService(ctx, acc)
	if err != nil {
		return nil, err
	}

	// The upload API needs a seekable reader, so the object is staged to a
	// temp file first.
	tempFile, err := downloadToTemp(ctx, media.URL)
	if err != nil {
		return nil, Retryable("youtube: stage video: %v", err)
	}
	defer os.Remove(tempFile)

	file, err := os.Open(tempFile)
	if err != nil {
		return nil, Retryable("youtube: open staged video: %v", err)
	}
	defer file.Close()

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       req.Title,
			Description: req.Caption,
			CategoryId:  "22",
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus: "public",
		},
	}

	call := service.Videos.Insert([]string{"snippet", "status"}, video)
	response, err := call.Media(file).Context(ctx).Do()
	if err != nil {
		return nil, classifyGoogleError(err)
	}
	return &PublishResult{PlatformContentID: response.Id}, nil
}

func (a *youtubeAdapter) AccountMetrics(ctx context.Context, acc *models.SocialAccount) (*AccountMetrics, error) {
	service, err := a.youtubeService(ctx, acc)
	if err != nil {
		return nil, err
	}

	resp, err := service.Channels.List([]string{"statistics"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return nil, classifyGoogleError(err)
	}
	if len(resp.Items) == 0 {
		return nil, Permanent("youtube: no channel for account %s", acc.AccountID)
	}

	stats := resp.Items[0].Statistics
	return &AccountMetrics{
		Followers:  int64(stats.SubscriberCount),
		MediaCount: int64(stats.VideoCount),
	}, nil
}

func (a *youtubeAdapter) ContentMetrics(ctx context.Context, acc *models.SocialAccount, platformContentID string) (*ContentMetrics, error) {
	service, err := a.youtubeService(ctx, acc)
	if err != nil {
		return nil, err
	}

	resp, err := service.Videos.List([]string{"statistics"}).Id(platformContentID).Context(ctx).Do()
	if err != nil {
		return nil, classifyGoogleError(err)
	}
	if len(resp.Items) == 0 {
		return nil, Permanent("youtube: video %s not found", platformContentID)
	}

	stats := resp.Items[0].Statistics
	return &ContentMetrics{
		Views:    int64(stats.ViewCount),
		Likes:    int64(stats.LikeCount),
		Comments: int64(stats.CommentCount),
	}, nil
}

func (a *youtubeAdapter) RefreshCredentials(ctx context.Context, acc *models.SocialAccount) (bool, error) {
	conf := &oauth2.Config{
		ClientID:     a.cfg.GoogleClientID,
		ClientSecret: a.cfg.GoogleClientSecret,
		Scopes:       []string{youtube.YoutubeUploadScope},
		Endpoint:     google.Endpoint,
	}

	decryptedRefreshToken, err := utils.Decrypt(acc.RefreshToken, []byte(a.cfg.SecretKey))
	if err != nil {
		return false, err
	}

	tokenSource := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: decryptedRefreshToken})
	token, err := tokenSource.Token()
	if err != nil {
		return false, err
	}
	if token.AccessToken == "" {
		return false, errors.New("youtube token refresh returned empty access token")
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(a.cfg.SecretKey))
	if err != nil {
		return false, err
	}

	updated := models.SocialAccount{
		AccessToken:    encryptedAccessToken,
		TokenExpiresAt: token.Expiry,
	}
	if err := a.sa.SetToken(ctx, acc.UserID, acc.AccessToken, &updated); err != nil {
		return false, err
	}

	acc.AccessToken = encryptedAccessToken
	acc.TokenExpiresAt = token.Expiry
	return true, nil
}

func (a *youtubeAdapter) youtubeService(ctx context.Context, acc *models.SocialAccount) (*youtube.Service, error) {
	decryptedAccessToken, err := utils.Decrypt(acc.AccessToken, []byte(a.cfg.SecretKey))
	if err != nil {
		return nil, Permanent("youtube: decrypt access token: %v", err)
	}

	token := &oauth2.Token{AccessToken: decryptedAccessToken}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	service, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, Retryable("youtube: create service: %v", err)
	}
	return service, nil
}

func classifyGoogleError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return ClassifyStatus(apiErr.Code, "youtube", apiErr.Message)
	}
	return Retryable("youtube: %v", err)
}

func downloadToTemp(ctx context.Context, url string) (string, error) {
	tempFile, err := os.CreateTemp("", "video-*.mp4")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer tempFile.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.New("unexpected response status " + strconv.Itoa(resp.StatusCode))
	}

	if _, err := io.Copy(tempFile, resp.Body); err != nil {
		return "", fmt.Errorf("write temp file: %w", err)
	}
	return tempFile.Name(), nil
}
