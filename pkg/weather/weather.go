// Package weather は、物語と画像の雰囲気づけに使う現在の天気を取得します。
package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/go-http-kit/httpkit"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultBaseURL  = "https://api.openweathermap.org"
	DefaultCity     = "Seoul"
	DefaultCacheTTL = 10 * time.Minute
	DefaultTimeout  = 10 * time.Second

	// FallbackDescription は天気が取得できないときに物語へ渡す文言なのだ。
	FallbackDescription = "날씨 정보 없음"
)

var errMissingKey = errors.New("weather: APIキーが設定されていません")

// Report は天気APIの応答のうち利用する項目です。
type Report struct {
	City        string
	Description string
	TempC       float64
	Humidity    int
}

// String は物語のプロンプトに埋め込む表現を返します。
func (r Report) String() string {
	return fmt.Sprintf("%s, %.1f°C, 습도 %d%%", r.Description, r.TempC, r.Humidity)
}

// Provider は都市名から現在の天気を返す契約です。
type Provider interface {
	Current(ctx context.Context, city string) (Report, error)
}

// Fetcher は GET でボディを取得する契約です。httpkit.Client が満たします。
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// NewHTTPFetcher はリトライなしの httpkit クライアントを返します。
func NewHTTPFetcher(timeout time.Duration, opts ...httpkit.ClientOption) *httpkit.Client {
	opts = append([]httpkit.ClientOption{httpkit.WithMaxRetries(0)}, opts...)
	return httpkit.New(timeout, opts...)
}

// Client は OpenWeatherMap 互換のAPIクライアントです。
type Client struct {
	baseURL string
	apiKey  string
	fetcher Fetcher
	timeout time.Duration
	cache   *cache.Cache
	group   singleflight.Group
}

// NewClient は Client を生成します。baseURL が空なら DefaultBaseURL を使います。
func NewClient(baseURL, apiKey string, fetcher Fetcher, ttl time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if fetcher == nil {
		fetcher = NewHTTPFetcher(DefaultTimeout)
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		fetcher: fetcher,
		timeout: DefaultTimeout,
		cache:   cache.New(ttl, 2*ttl),
	}
}

// Current は city の天気を返します。同じ都市の結果はキャッシュされ、同時の問い合わせは1回にまとめるのだ。
// 共有の取得処理は最初の呼び出し元のキャンセルに引きずられず、各呼び出し元は自分の ctx で待ちを打ち切れます。
func (c *Client) Current(ctx context.Context, city string) (Report, error) {
	if c.apiKey == "" {
		return Report{}, errMissingKey
	}
	key := strings.ToLower(strings.TrimSpace(city))
	if key == "" {
		return Report{}, errors.New("weather: 都市名が空です")
	}

	if v, ok := c.cache.Get(key); ok {
		return v.(Report), nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		r, err := c.fetch(fctx, city)
		if err != nil {
			return nil, err
		}
		c.cache.SetDefault(key, r)
		return r, nil
	})

	select {
	case <-ctx.Done():
		return Report{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Report{}, res.Err
		}
		return res.Val.(Report), nil
	}
}

func (c *Client) fetch(ctx context.Context, city string) (Report, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	q.Set("lang", "kr")
	endpoint := c.baseURL + "/data/2.5/weather?" + q.Encode()

	body, err := c.fetcher.FetchBytes(ctx, endpoint)
	if err != nil {
		var httpErr *httpkit.NonRetryableHTTPError
		if errors.As(err, &httpErr) {
			return Report{}, fmt.Errorf("天気APIがエラーを返しました (status=%d): %s", httpErr.StatusCode, gjson.GetBytes(httpErr.Body, "message").String())
		}
		return Report{}, fmt.Errorf("天気APIの呼び出しに失敗しました: %w", err)
	}
	return ParseReport(body)
}

// ParseReport は天気APIの JSON から Report を取り出します。必須キーが欠けていればエラーです。
func ParseReport(body []byte) (Report, error) {
	if !gjson.ValidBytes(body) {
		return Report{}, errors.New("天気APIの応答が不正なJSONです")
	}
	res := gjson.GetManyBytes(body, "weather.0.description", "main.temp", "main.humidity", "name")
	for i, path := range []string{"weather.0.description", "main.temp"} {
		if !res[i].Exists() {
			return Report{}, fmt.Errorf("天気APIの応答に '%s' がありません", path)
		}
	}
	return Report{
		Description: res[0].String(),
		TempC:       res[1].Float(),
		Humidity:    int(res[2].Int()),
		City:        res[3].String(),
	}, nil
}

// Describe は天気の説明文を返します。失敗しても FallbackDescription を返すので、呼び出し側はエラー処理が不要なのだ。
func Describe(ctx context.Context, p Provider, city string) string {
	if p == nil {
		return FallbackDescription
	}
	if city == "" {
		city = DefaultCity
	}
	r, err := p.Current(ctx, city)
	if err != nil {
		slog.WarnContext(ctx, "天気情報の取得に失敗しました", "city", city, "error", err)
		return FallbackDescription
	}
	return r.String()
}
