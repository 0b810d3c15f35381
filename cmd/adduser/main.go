// Command adduser creates an account directly in the database.
// It reads the same configuration as the server.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/prompt"
	"github.com/dmitrijs2005/filesmanager/internal/server/config"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filesmanager/internal/server/services"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	db, err := repomanager.OpenDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		log.Fatalf("%v", err)
	}

	email, err := prompt.Line(bufio.NewReader(os.Stdin), "Enter user name (email)", os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}

	password, err := prompt.Password("Enter password", os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer common.WipeByteArray(password)

	user, err := services.NewUserService(db, rm, cfg).Register(ctx, email, string(password))
	if err != nil {
		log.Fatalf("%s", common.Reason(err, err.Error()))
	}

	fmt.Printf("User %s created with id %s\n", user.Email, user.ID)
}
