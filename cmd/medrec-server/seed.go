package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/medrec/medrec/internal/config"
	"github.com/medrec/medrec/internal/domain/billing"
	"github.com/medrec/medrec/internal/domain/identity"
	"github.com/medrec/medrec/internal/domain/patient"
	"github.com/medrec/medrec/internal/platform/auth"
	"github.com/medrec/medrec/internal/platform/db"
)

// seedCmd loads a small demo dataset: one provider, one staff member, two
// verified patients, and a handful of bills. Intended for development only.
func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo accounts and bills",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			hash, err := auth.HashPassword("password123")
			if err != nil {
				return err
			}

			// All inserts share one transaction so a half-loaded demo
			// dataset never survives a failure.
			tx, err := pool.Begin(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = tx.Rollback(ctx) }()
			ctx = db.WithTx(ctx, tx)

			providers := identity.NewProviderRepoPG(pool)
			if err := providers.Create(ctx, &identity.Account{
				Email:        "dr.house@medrec.test",
				PasswordHash: hash,
				FirstName:    "Gregory",
				LastName:     "House",
				Role:         "Doctor",
				Permissions:  []string{"patients:read", "patients:write"},
				IsActive:     true,
			}); err != nil {
				return fmt.Errorf("seed provider: %w", err)
			}

			staff := identity.NewStaffRepoPG(pool)
			if err := staff.Create(ctx, &identity.Account{
				Email:        "records@medrec.test",
				PasswordHash: hash,
				FirstName:    "Carla",
				LastName:     "Espinosa",
				Role:         "Records Administrator",
				Permissions:  []string{"accounts:manage", "reports:read"},
				IsActive:     true,
			}); err != nil {
				return fmt.Errorf("seed staff: %w", err)
			}

			patients := patient.NewRepoPG(pool)
			due := time.Now().Add(14 * 24 * time.Hour)
			pastDue := time.Now().Add(-30 * 24 * time.Hour)
			bills := billing.NewRepoPG(pool)

			for i, seed := range []struct {
				email, first, last string
			}{
				{"jane.doe@medrec.test", "Jane", "Doe"},
				{"john.smith@medrec.test", "John", "Smith"},
			} {
				p := &patient.Patient{
					Email:        seed.email,
					PasswordHash: hash,
					FirstName:    seed.first,
					LastName:     seed.last,
					IsActive:     true,
					IsVerified:   true,
				}
				if err := patients.Create(ctx, p); err != nil {
					return fmt.Errorf("seed patient %s: %w", seed.email, err)
				}

				desc := "Annual physical"
				if err := bills.Create(ctx, &billing.Bill{
					PatientID:   p.ID,
					Amount:      149.99,
					Status:      billing.StatusPending,
					Description: &desc,
					DueDate:     &due,
				}); err != nil {
					return fmt.Errorf("seed bill: %w", err)
				}
				if i == 0 {
					lateDesc := "Lab panel"
					if err := bills.Create(ctx, &billing.Bill{
						PatientID:   p.ID,
						Amount:      89.50,
						Status:      billing.StatusPending,
						Description: &lateDesc,
						DueDate:     &pastDue,
					}); err != nil {
						return fmt.Errorf("seed bill: %w", err)
					}
				}
			}

			if err := tx.Commit(ctx); err != nil {
				return err
			}

			fmt.Println("Seed data loaded. All demo accounts use password 'password123'.")
			return nil
		},
	}
}
