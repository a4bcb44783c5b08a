package pkg

import "mlstudio"

func AssertNoError(err error) {
	if err != nil {
		mlstudio.Logger.Error().Err(err).Msg("Error occurred that should not have occurred.")
		panic(err)
	}
}
