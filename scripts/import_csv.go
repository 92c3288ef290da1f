// 手动导入互评 CSV
//
// 与后台 POST /api/survey/import 相同的解析与校验规则，适合学期初批量导入历史数据。
// 无效行会被跳过并打印原因。
//
// 用法: go run scripts/import_csv.go -config configs path/to/survey.csv

package main

import (
	"concept_review_backend/internal/config"
	"concept_review_backend/internal/repository"
	"concept_review_backend/internal/service"
	"concept_review_backend/internal/util"
	"concept_review_backend/pkg/database"
	"concept_review_backend/pkg/logger"
	"context"
	"flag"
	"log"
	"os"
)

func main() {
	configPath := flag.String("config", "configs", "配置文件目录")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("用法: go run scripts/import_csv.go [-config dir] <file.csv>")
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("无法读取 CSV 文件: %v", err)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database, true)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	loc := util.FixedZone(cfg.Leaderboard.UTCOffsetHours)
	surveyService := service.NewSurveyService(repository.NewSurveyResponseRepository(db), loc)

	log.Println("开始导入...")
	result, err := surveyService.Import(context.Background(), string(data))
	if err != nil {
		log.Fatalf("导入失败: %v", err)
	}

	for _, row := range result.SkippedRows {
		log.Printf("跳过第 %d 行: %s %v", row.Row, row.Reason, row.Missing)
	}
	log.Printf("完成！导入 %d 条，跳过 %d 条", result.Imported, result.Skipped)
}
