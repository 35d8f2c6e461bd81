package energy

import "fmt"

const joulesPerKWh = 3.6e6

// RateCard defines electricity pricing in USD per kilowatt-hour.
type RateCard struct {
	USDPerKWh float64
}

// Statement is the estimated energy cost for one host over one run.
type Statement struct {
	HostName      string  `json:"host_name"`
	EnergyJoules  float64 `json:"energy_joules"`
	KilowattHours float64 `json:"kilowatt_hours"`
	AmountUSD     float64 `json:"amount_usd"`
}

func NewRateCard(usdPerKWh float64) (RateCard, error) {
	if usdPerKWh < 0 {
		return RateCard{}, fmt.Errorf("negative price is invalid")
	}
	return RateCard{USDPerKWh: usdPerKWh}, nil
}

// Statement converts a host's cumulative joules into a cost estimate.
func (r RateCard) Statement(hostName string, energyJoules float64) Statement {
	kwh := energyJoules / joulesPerKWh
	return Statement{
		HostName:      hostName,
		EnergyJoules:  energyJoules,
		KilowattHours: kwh,
		AmountUSD:     kwh * r.USDPerKWh,
	}
}
