package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"commerce.GO/config"
	"commerce.GO/model/domain"
	catalogRepo "commerce.GO/model/repository/catalog"
	inventoryRepo "commerce.GO/model/repository/inventory"
	inventorySvc "commerce.GO/service/inventory"
)

var (
	adjustProductID uint
	adjustVariantID uint
	adjustQuantity  int
	adjustType      string
	adjustNotes     string
)

var stockAdjustCmd = &cobra.Command{
	Use:   "stock:adjust",
	Short: "Apply a manual inventory mutation through the ledger",
	Run: func(cmd *cobra.Command, args []string) {
		if adjustProductID == 0 {
			fmt.Println("--product is required")
			os.Exit(1)
		}
		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			os.Exit(1)
		}

		catalog := catalogRepo.NewCatalogRepository(db)
		ledger := inventorySvc.NewLedger(
			catalog,
			inventoryRepo.NewInventoryRepository(db),
		)

		ref := inventorySvc.SKURef{ProductID: adjustProductID}
		if adjustVariantID != 0 {
			vid := adjustVariantID
			ref.VariantID = &vid
		}
		var notes *string
		if adjustNotes != "" {
			notes = &adjustNotes
		}

		var res *inventorySvc.MutationResult
		err = db.Transaction(func(tx *gorm.DB) error {
			var txErr error
			res, txErr = ledger.Apply(tx, ref, adjustQuantity, domain.TxnType(adjustType), notes, nil)
			return txErr
		})
		if err != nil {
			fmt.Printf("Stock mutation failed: %v\n", err)
			os.Exit(1)
		}
		catalog.InvalidateProduct(adjustProductID)
		fmt.Printf("Stock for product %d moved %d -> %d (%s), status %s\n",
			adjustProductID, res.QuantityBefore, res.QuantityAfter, adjustType, res.Status)
	},
}

func init() {
	stockAdjustCmd.Flags().UintVar(&adjustProductID, "product", 0, "Product ID")
	stockAdjustCmd.Flags().UintVar(&adjustVariantID, "variant", 0, "Variant ID (optional)")
	stockAdjustCmd.Flags().IntVarP(&adjustQuantity, "quantity", "q", 0, "Quantity (absolute for adjustment, delta otherwise)")
	stockAdjustCmd.Flags().StringVarP(&adjustType, "type", "t", "adjustment", "Mutation type: purchase, return, adjustment, damage")
	stockAdjustCmd.Flags().StringVarP(&adjustNotes, "notes", "n", "", "Notes stored on the ledger row")
	rootCmd.AddCommand(stockAdjustCmd)
}
