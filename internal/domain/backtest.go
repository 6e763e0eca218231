package domain

// Simulate ejecuta la máquina FLAT/LONG/SHORT sobre series, una señal por
// fecha, y devuelve el ledger diario de equity y el trade log.
//
// Por fecha, en orden:
//  1. mark-to-market de la posición que viene del día anterior,
//     sign × (v_t − v_{t−1});
//  2. la transición de la señal: ENTER_* desde FLAT abre a v_t y cobra el
//     coste de entrada; EXIT con posición cierra a v_t, cobra el coste de
//     salida y añade un Trade. ENTER con posición y EXIT en FLAT no hacen nada.
//
// Una posición abierta tras la última fecha se cierra forzosamente al último
// valor. Su coste de salida solo se cobra si costs.ChargeForcedClose.
//
// Fechas desordenadas o duplicadas, o señales no alineadas con la serie, son
// un InvariantViolationError y no se devuelve nada.
func Simulate(series SpreadSeries, signals []Signal, costs CostConfig) (BacktestResult, error) {
	if err := costs.Validate(); err != nil {
		return BacktestResult{}, err
	}
	if err := series.Validate(); err != nil {
		return BacktestResult{}, err
	}

	obs := series.Observations
	if len(signals) != len(obs) {
		return BacktestResult{}, &InvariantViolationError{
			Index:  min(len(signals), len(obs)),
			Reason: "signal count does not match observation count",
		}
	}

	result := BacktestResult{
		Equity: make([]EquityPoint, 0, len(obs)),
	}
	pos := Position{Status: StatusFlat}
	entryIdx := 0
	cum := 0.0

	closeAt := func(i int, exitCost float64, forced bool) {
		exit := obs[i].Value
		gross := pos.Status.Sign() * (exit - pos.EntryValue)
		total := pos.EntryCost + exitCost
		result.Trades = append(result.Trades, Trade{
			EntryDate:   pos.EntryDate,
			ExitDate:    obs[i].Date,
			EntryValue:  pos.EntryValue,
			ExitValue:   exit,
			Direction:   pos.Status,
			GrossPnL:    gross,
			Costs:       total,
			NetPnL:      gross - total,
			HoldingBars: i - entryIdx,
			ForcedClose: forced,
		})
		pos = Position{Status: StatusFlat}
	}

	for i, o := range obs {
		sig := signals[i]
		if !sig.Date.Equal(o.Date) {
			return BacktestResult{}, &InvariantViolationError{Index: i, Date: sig.Date, Reason: "signal date does not match observation"}
		}

		var mtm, dayCosts float64
		if i > 0 && pos.Open() {
			mtm = pos.Status.Sign() * (o.Value - obs[i-1].Value)
		}

		switch sig.Action {
		case ActionEnterLong, ActionEnterShort:
			if !pos.Open() {
				status := StatusLong
				if sig.Action == ActionEnterShort {
					status = StatusShort
				}
				pos = Position{Status: status, EntryDate: o.Date, EntryValue: o.Value, EntryCost: costs.EntryCost}
				entryIdx = i
				dayCosts += costs.EntryCost
			}
		case ActionExit:
			if pos.Open() {
				dayCosts += costs.ExitCost
				closeAt(i, costs.ExitCost, false)
			}
		}

		if i == len(obs)-1 && pos.Open() {
			exitCost := 0.0
			if costs.ChargeForcedClose {
				exitCost = costs.ExitCost
			}
			dayCosts += exitCost
			closeAt(i, exitCost, true)
		}

		cum += mtm - dayCosts
		result.Equity = append(result.Equity, EquityPoint{
			Date:          o.Date,
			Value:         o.Value,
			Position:      pos.Status,
			MarkToMarket:  mtm,
			Costs:         dayCosts,
			CumulativePnL: cum,
		})
	}

	return result, nil
}
