package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/ikkim/tableqr-backend/config"
	"github.com/ikkim/tableqr-backend/internal/app/model"
	"github.com/ikkim/tableqr-backend/internal/app/repository"
	"github.com/ikkim/tableqr-backend/internal/db"
	"github.com/ikkim/tableqr-backend/pkg/util"
	"github.com/lib/pq"
	"github.com/xuri/excelize/v2"
)

func main() {
	xlsxPath := flag.String("xlsx", "", "restaurant sheet to import (external id, name, address, phone, cuisines, active)")
	operatorEmail := flag.String("operator", "operator@tableqr.local", "email embedded in the operator token")
	flag.Parse()

	// 설정 로드
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// DB 연결
	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	restaurantRepo := repository.NewRestaurantRepository(db.GetDB())

	if *xlsxPath != "" {
		fmt.Printf("Reading XLSX file: %s\n", *xlsxPath)
		restaurants, skipped, err := readRestaurantsFromXLSX(*xlsxPath)
		if err != nil {
			log.Fatal("Failed to read XLSX:", err)
		}

		created, updated := 0, 0
		for i := range restaurants {
			isNew, err := importRestaurant(restaurantRepo, &restaurants[i])
			if err != nil {
				log.Fatalf("Failed to import %s: %v", restaurants[i].Name, err)
			}
			if isNew {
				created++
			} else {
				updated++
			}
		}

		fmt.Printf("\nSummary:\n")
		fmt.Printf("  Created: %d\n", created)
		fmt.Printf("  Updated: %d\n", updated)
		fmt.Printf("  Skipped rows: %d\n", skipped)
	} else if err := db.Seed(); err != nil {
		log.Fatal("Failed to seed restaurants:", err)
	}

	restaurants, err := restaurantRepo.FindAll(nil)
	if err != nil {
		log.Fatal("Failed to list restaurants:", err)
	}

	// 개발용 토큰 출력
	adminToken, err := util.GenerateToken(1, "admin@tableqr.local", util.RoleAdmin, nil, cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	if err != nil {
		log.Fatal("Failed to generate admin token:", err)
	}
	fmt.Printf("\nAdmin token:\n%s\n", adminToken)

	if len(restaurants) > 0 {
		first := restaurants[0]
		operatorToken, err := util.GenerateToken(2, *operatorEmail, util.RoleOperator, []uint{first.ID}, cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
		if err != nil {
			log.Fatal("Failed to generate operator token:", err)
		}
		fmt.Printf("\nOperator token (restaurant %d, %s):\n%s\n", first.ID, first.Name, operatorToken)
	}
}

// importRestaurant 외부 ID가 있으면 갱신, 없으면 생성
func importRestaurant(repo repository.RestaurantRepository, restaurant *model.Restaurant) (bool, error) {
	if restaurant.ExternalID == nil {
		return true, repo.Create(restaurant)
	}

	existing, err := repo.FindByExternalID(*restaurant.ExternalID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return true, repo.Create(restaurant)
	}

	existing.Name = restaurant.Name
	existing.Address = restaurant.Address
	existing.PhoneNumber = restaurant.PhoneNumber
	existing.Cuisines = restaurant.Cuisines
	existing.IsActive = restaurant.IsActive
	return false, repo.Update(existing)
}

// readRestaurantsFromXLSX 첫 번째 시트를 읽는다. 첫 행은 헤더
func readRestaurantsFromXLSX(filePath string) ([]model.Restaurant, int, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("no data found in XLSX file")
	}

	var restaurants []model.Restaurant
	seen := make(map[string]bool) // 중복 외부 ID 제거용
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			continue
		}

		name := cell(row, 1)
		if name == "" {
			skipped++
			continue
		}

		restaurant := model.Restaurant{
			Name:        name,
			Address:     cell(row, 2),
			PhoneNumber: cell(row, 3),
			Cuisines:    parseCuisines(cell(row, 4)),
			IsActive:    parseActive(cell(row, 5)),
		}

		if externalID := cell(row, 0); externalID != "" {
			if seen[externalID] {
				skipped++
				continue
			}
			seen[externalID] = true
			restaurant.ExternalID = &externalID
		}

		restaurants = append(restaurants, restaurant)
	}

	return restaurants, skipped, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseCuisines(s string) pq.StringArray {
	cuisines := pq.StringArray{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			cuisines = append(cuisines, part)
		}
	}
	return cuisines
}

// parseActive 빈 칸은 운영 중으로 본다
func parseActive(s string) bool {
	switch strings.ToLower(s) {
	case "n", "no", "false", "0", "closed":
		return false
	default:
		return true
	}
}
