package database

import (
	"context"
	"fmt"

	"github.com/maho-na510/aquarium-visit-log/internal/api/models"
	"github.com/maho-na510/aquarium-visit-log/internal/middleware/auth"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SeedUserEmail    = "test@example.com"
	SeedUserName     = "テストユーザー"
	SeedUserUsername = "testuser"
	SeedUserPassword = "password123"
)

var seedAquariums = []models.Aquarium{
	{
		Name:        "沖縄美ら海水族館",
		Description: "世界最大級の水槽「黒潮の海」を有する水族館。ジンベエザメやマンタの複数飼育で有名。",
		Address:     "沖縄県国頭郡本部町石川424",
		Prefecture:  "沖縄県",
		Latitude:    26.694051,
		Longitude:   127.878123,
		PhoneNumber: "0980-48-3748",
		Website:     "https://churaumi.okinawa/",
		OpeningHours: datatypes.JSONMap{
			"regular": "8:30-18:30",
			"summer":  "8:30-20:00",
		},
		AdmissionFee: datatypes.JSONMap{
			"adult":       2180,
			"high_school": 1440,
			"elementary":  710,
		},
	},
	{
		Name:        "海遊館",
		Description: "太平洋を取り囲む「環太平洋火山帯」の自然環境を再現した世界最大級の水族館。",
		Address:     "大阪府大阪市港区海岸通1-1-10",
		Prefecture:  "大阪府",
		Latitude:    34.654514,
		Longitude:   135.428951,
		PhoneNumber: "06-6576-5501",
		Website:     "https://www.kaiyukan.com/",
		OpeningHours: datatypes.JSONMap{
			"regular": "10:00-20:00",
		},
		AdmissionFee: datatypes.JSONMap{
			"adult":  2700,
			"child":  1400,
			"infant": 700,
		},
	},
	{
		Name:        "名古屋港水族館",
		Description: "シャチやベルーガなど鯨類の展示が充実。イルカパフォーマンスも人気。",
		Address:     "愛知県名古屋市港区港町1-3",
		Prefecture:  "愛知県",
		Latitude:    35.090634,
		Longitude:   136.885455,
		PhoneNumber: "052-654-7080",
		Website:     "https://nagoyaaqua.jp/",
		OpeningHours: datatypes.JSONMap{
			"regular":     "9:30-17:30",
			"golden_week": "9:30-20:00",
		},
		AdmissionFee: datatypes.JSONMap{
			"adult":       2030,
			"high_school": 2030,
			"elementary":  1010,
			"infant":      500,
		},
	},
	{
		Name:        "サンシャイン水族館",
		Description: "都市型高層水族館。「天空のペンギン」など都市の空を泳ぐような展示が特徴。",
		Address:     "東京都豊島区東池袋3-1 サンシャインシティ ワールドインポートマートビル屋上",
		Prefecture:  "東京都",
		Latitude:    35.729440,
		Longitude:   139.719690,
		PhoneNumber: "03-3989-3466",
		Website:     "https://sunshinecity.jp/aquarium/",
		OpeningHours: datatypes.JSONMap{
			"spring_summer": "9:00-21:00",
			"autumn_winter": "10:00-18:00",
		},
		AdmissionFee: datatypes.JSONMap{
			"adult":  2600,
			"child":  1300,
			"infant": 800,
		},
	},
	{
		Name:        "すみだ水族館",
		Description: "東京スカイツリータウン内にある水族館。国内最大級の屋内開放型水槽が特徴。",
		Address:     "東京都墨田区押上1-1-2 東京スカイツリータウン・ソラマチ5-6F",
		Prefecture:  "東京都",
		Latitude:    35.710332,
		Longitude:   139.810700,
		PhoneNumber: "03-5619-1821",
		Website:     "https://www.sumida-aquarium.com/",
		OpeningHours: datatypes.JSONMap{
			"weekday": "10:00-20:00",
			"holiday": "9:00-21:00",
		},
		AdmissionFee: datatypes.JSONMap{
			"adult":       2500,
			"high_school": 1800,
			"elementary":  1200,
			"infant":      800,
		},
	},
}

// SeedResult reports how many rows Seed inserted.
type SeedResult struct {
	AquariumsCreated int
	UserCreated      bool
}

// Seed inserts the catalog aquariums (matched by name) and the test user (matched by email).
// Existing rows are left untouched, so running it twice is harmless.
func Seed(ctx context.Context, db *gorm.DB) (*SeedResult, error) {
	result := &SeedResult{}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, data := range seedAquariums {
			var count int64
			if err := tx.Model(&models.Aquarium{}).Where("name = ?", data.Name).Count(&count).Error; err != nil {
				return fmt.Errorf("look up aquarium %s: %w", data.Name, err)
			}
			if count > 0 {
				continue
			}
			a := data
			if err := tx.Create(&a).Error; err != nil {
				return fmt.Errorf("seed aquarium %s: %w", data.Name, err)
			}
			result.AquariumsCreated++
		}

		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", SeedUserEmail).Count(&count).Error; err != nil {
			return fmt.Errorf("look up seed user: %w", err)
		}
		if count > 0 {
			return nil
		}

		hash, err := auth.HashPassword(SeedUserPassword)
		if err != nil {
			return err
		}
		user := &models.User{
			Email:    SeedUserEmail,
			Username: SeedUserUsername,
			Name:     SeedUserName,
			Password: hash,
			Role:     models.RoleUser,
		}
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		result.UserCreated = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
