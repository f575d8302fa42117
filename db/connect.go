package db

import (
	"log"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	models "github.com/memorai/memorai/dbmodels"
)

var DB *gorm.DB

// ConnectDB opens the store and migrates the three tables. A DSN of the
// form user:pass@tcp(host)/name selects MySQL, anything else is treated
// as a SQLite file path.
func ConnectDB(dsn string) {
	var (
		dialector gorm.Dialector
		err       error
	)

	if strings.Contains(dsn, "@tcp(") {
		dialector = mysql.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	DB, err = gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("Migration failed:", err)
	}
}

// Migrate is split out so tests can run it against their own connection.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Memory{}, &models.ChatMessage{})
}
