package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"online_shop/internal/pkg/config"
	"online_shop/pkg/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// Config
const (
	BaseURL    = "http://localhost:8080"
	TotalUsers = 2000 // 模拟 2000 个用户并发结算
	SeedStock  = 100000
)

var (
	TestProductID int
	httpClient    *http.Client
)

func init() {
	// 优化 HTTP Client 配置
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 2000
	t.MaxIdleConnsPerHost = 2000
	t.MaxConnsPerHost = 2000
	httpClient = &http.Client{
		Transport: t,
		Timeout:   15 * time.Second,
		// 结算成功是 303 跳转到收银台，不跟随
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func main() {
	config.LoadConfig()

	// 1. 直连数据库种入压测商品，绕过管理端接口
	seedProduct()

	fmt.Printf("开始压测：模拟 %d 个用户加购 + 结算 (ProductID: %d)...\n", TotalUsers, TestProductID)
	time.Sleep(1 * time.Second)

	// 2. 并发结算
	var wg sync.WaitGroup
	addOK := 0
	checkoutOK := 0
	failCount := 0
	var mu sync.Mutex

	start := time.Now()

	for i := 1; i <= TotalUsers; i++ {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()
			token, err := utils.GenerateToken(uint(userID), utils.RoleUser)
			if err != nil {
				mu.Lock()
				failCount++
				mu.Unlock()
				return
			}

			added := addToCart(token)
			redirected := false
			if added {
				redirected = checkout(token)
			}

			mu.Lock()
			if added {
				addOK++
			}
			if redirected {
				checkoutOK++
			}
			if !added || !redirected {
				failCount++
			}
			mu.Unlock()
		}(i)
	}

	wg.Wait()
	duration := time.Since(start)
	qps := float64(TotalUsers) / duration.Seconds()

	fmt.Println("--------------------------------------------------")
	fmt.Printf("压测结束，耗时: %v\n", duration)
	fmt.Printf("总用户数: %d\n", TotalUsers)
	fmt.Printf("QPS: %.2f\n", qps)
	fmt.Printf("加购成功: %d\n", addOK)
	fmt.Printf("跳转收银台成功: %d\n", checkoutOK)
	fmt.Printf("失败: %d\n", failCount)
	fmt.Println("--------------------------------------------------")
}

// seedProduct 直接写库造数，压测不依赖管理端权限
func seedProduct() {
	cfg := config.GlobalConfig.Database
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, cfg.SSLMode)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		log.Fatalf("连接数据库失败: %v", err)
	}
	defer db.Close()

	err = db.QueryRow(`
		INSERT INTO products (name, description, price, currency, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id`,
		"压测专用商品", "stress test only", "1000", "jpy", SeedStock,
	).Scan(&TestProductID)
	if err != nil {
		log.Fatalf("种入商品失败: %v", err)
	}

	fmt.Printf("压测商品已种入: ID=%d, 库存=%d\n", TestProductID, SeedStock)
}

func addToCart(token string) bool {
	payload := map[string]interface{}{
		"productId": TestProductID,
		"quantity":  1,
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequest(http.MethodPost, BaseURL+"/cart/items", bytes.NewBuffer(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return false
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return false
	}

	// 检查业务状态码
	var result struct {
		Code int `json:"code"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return false
	}
	return result.Code == 0
}

func checkout(token string) bool {
	req, err := http.NewRequest(http.MethodPost, BaseURL+"/checkout", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	// 成功是 303 + Location 指向托管收银台
	return resp.StatusCode == http.StatusSeeOther && resp.Header.Get("Location") != ""
}
