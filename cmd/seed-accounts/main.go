// seed-accounts loads a minimal public-sector chart of accounts for one
// entity, including the mandated system accounts the posting workflows
// resolve (401, 411, 515, 12, 6817, 491).
//
// Usage:
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//     go run ./cmd/seed-accounts -entity <entity-id>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/config"
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/models"
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/utils"
)

type seedAccount struct {
	number    string
	label     string
	nature    models.AccountNature
	lettrable bool
}

var chart = []seedAccount{
	{"10", "Dotations et fonds propres", models.AccountNatureCredit, false},
	{"12", "Résultat de l'exercice", models.AccountNatureCredit, false},
	{"16", "Emprunts et dettes assimilées", models.AccountNatureCredit, false},
	{"21", "Immobilisations corporelles", models.AccountNatureDebit, false},
	{"28", "Amortissements des immobilisations", models.AccountNatureCredit, false},
	{"401", "Fournisseurs", models.AccountNatureCredit, true},
	{"411", "Redevables et clients", models.AccountNatureDebit, true},
	{"491", "Provisions pour créances douteuses", models.AccountNatureCredit, false},
	{"515", "Compte au Trésor", models.AccountNatureDebit, false},
	{"60", "Achats et variations de stocks", models.AccountNatureDebit, false},
	{"61", "Services extérieurs", models.AccountNatureDebit, false},
	{"64", "Charges de personnel", models.AccountNatureDebit, false},
	{"6817", "Dotations aux provisions pour créances douteuses", models.AccountNatureDebit, false},
	{"70", "Ventes de produits et services", models.AccountNatureCredit, false},
	{"74", "Subventions d'exploitation", models.AccountNatureCredit, false},
	{"75", "Autres produits de gestion courante", models.AccountNatureCredit, false},
}

func main() {
	entityId := flag.String("entity", "", "entity id to seed the chart for")
	flag.Parse()
	if *entityId == "" {
		fmt.Fprintln(os.Stderr, "usage: seed-accounts -entity <entity-id>")
		os.Exit(2)
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	if err := models.MigrateModels(); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	ctx = utils.SetEntityIdInContext(ctx, *entityId)
	ctx = utils.SetUserNameInContext(ctx, "Seed")

	created, skipped := 0, 0
	for _, acc := range chart {
		var count int64
		if err := db.WithContext(ctx).Model(&models.Account{}).
			Where("entity_id = ? AND account_number = ?", *entityId, acc.number).
			Count(&count).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to lookup account %s: %v\n", acc.number, err)
			os.Exit(1)
		}
		if count > 0 {
			skipped++
			continue
		}
		_, err := models.CreateAccount(ctx, &models.NewAccount{
			AccountNumber: acc.number,
			Label:         acc.label,
			Nature:        acc.nature,
			IsLettrable:   acc.lettrable,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create account %s: %v\n", acc.number, err)
			os.Exit(1)
		}
		created++
	}
	fmt.Printf("seed-accounts: %d created, %d already present for entity %s\n", created, skipped, *entityId)
}
