package testutil

import (
	"cashier/models"
)

// CreateTestCurrency creates a test currency with default precision
func CreateTestCurrency(code string) *models.Currency {
	return &models.Currency{
		Code:      code,
		Precision: 4,
	}
}

// CreateTestGame creates a test game with one session parameter
func CreateTestGame(id uint64) *models.Game {
	return &models.Game{
		ID: id,
		Params: models.GameParams{
			"BET": {{Type: 0, Value: 100}},
		},
	}
}

// CreateTestGameWithParams creates a test game with specific parameters
func CreateTestGameWithParams(id uint64, params models.GameParams) *models.Game {
	game := CreateTestGame(id)
	game.Params = params
	return game
}
