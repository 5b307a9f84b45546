package urls

import (
	"net/url"
	"os"
	"strings"
)

// DeployURLEnv 部署平台注入的对外可达地址
const DeployURLEnv = "DEPLOY_URL"

// defaultBaseURL 本地开发兜底
const defaultBaseURL = "http://localhost:8080"

// Resolver 计算对外可达的 URL
// 支付网关的回调地址和商品图片都必须是绝对 URL
type Resolver interface {
	BaseURL() string
	FullURL(path string) string
	IsValidURL(s string) bool
}

type EnvResolver struct {
	configuredBase string
}

// NewResolver configuredBase 来自配置文件 app.base_url，可以为空
func NewResolver(configuredBase string) *EnvResolver {
	return &EnvResolver{configuredBase: configuredBase}
}

// BaseURL 平台注入地址 > 配置地址 > 本地默认
func (r *EnvResolver) BaseURL() string {
	if deploy := os.Getenv(DeployURLEnv); deploy != "" {
		if strings.HasPrefix(deploy, "http://") || strings.HasPrefix(deploy, "https://") {
			return deploy
		}
		return "https://" + deploy
	}
	if r.configuredBase != "" {
		return r.configuredBase
	}
	return defaultBaseURL
}

// FullURL 拼接 base 和 path，保证中间恰好一个斜杠
func (r *EnvResolver) FullURL(path string) string {
	base := strings.TrimRight(r.BaseURL(), "/")
	if path == "" {
		return base
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// IsValidURL 仅接受绝对的 http/https URL
func (r *EnvResolver) IsValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

var _ Resolver = (*EnvResolver)(nil)
