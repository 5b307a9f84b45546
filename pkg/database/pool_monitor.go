package database

import (
	"time"

	"online_shop/pkg/metrics"

	"gorm.io/gorm"
)

// StartPoolMonitor 周期性采集连接池状态并上报 prometheus
func StartPoolMonitor(db *gorm.DB, interval time.Duration) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		collector := metrics.GetGlobalCollector()
		for range ticker.C {
			stats := sqlDB.Stats()
			collector.UpdateDBConnections(stats.InUse, stats.Idle)
		}
	}()
}
