// Package pricing implements Black-Scholes greeks and probability-of-profit
// estimates. Greeks are computed locally because chain providers do not
// return them.
package pricing

import (
	"math"

	"github.com/jiaming2012/spread-scanner/src/models"
)

// RiskFreeRate approximates the 3-month T-bill rate.
const RiskFreeRate = 0.05

type Greeks struct {
	Delta float64
	Gamma float64
	Theta float64 // per calendar day
	Vega  float64 // per 1% IV change
	Rho   float64 // per 1% rate change
}

// normCDF is the standard normal cumulative distribution function.
func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// normPDF is the standard normal probability density function.
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

// ComputeGreeks computes Black-Scholes greeks for a European option.
//
// S is the spot price, K the strike, T the time to expiry in years, r the
// risk-free rate and sigma the implied volatility (both decimals).
//
// Degenerate input (T<=0, sigma<=0, S<=0 or K<=0) returns all-zero greeks
// rather than an error: expired or quoteless contracts show up routinely in
// raw chains and must not abort normalization.
func ComputeGreeks(S, K, T, r, sigma float64, optionType models.OptionType) Greeks {
	if T <= 0 || sigma <= 0 || S <= 0 || K <= 0 {
		return Greeks{}
	}

	sqrtT := math.Sqrt(T)
	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT

	isCall := optionType == models.Call

	var delta float64
	if isCall {
		delta = normCDF(d1)
	} else {
		delta = normCDF(d1) - 1.0
	}

	gamma := normPDF(d1) / (S * sigma * sqrtT)

	// Theta per calendar day.
	var theta float64
	if isCall {
		theta = (-(S*normPDF(d1)*sigma)/(2*sqrtT) - r*K*math.Exp(-r*T)*normCDF(d2)) / 365
	} else {
		theta = (-(S*normPDF(d1)*sigma)/(2*sqrtT) + r*K*math.Exp(-r*T)*normCDF(-d2)) / 365
	}

	vega := S * normPDF(d1) * sqrtT / 100

	var rho float64
	if isCall {
		rho = K * T * math.Exp(-r*T) * normCDF(d2) / 100
	} else {
		rho = -K * T * math.Exp(-r*T) * normCDF(-d2) / 100
	}

	return Greeks{
		Delta: round6(delta),
		Gamma: round6(gamma),
		Theta: round6(theta),
		Vega:  round6(vega),
		Rho:   round6(rho),
	}
}

// ComputeProbabilityOfProfit estimates the probability that the underlying
// finishes beyond the breakeven at expiry under a lognormal model. The result
// is clamped to [0.01, 0.99]; degenerate input returns the neutral 0.5.
func ComputeProbabilityOfProfit(breakeven, spot, iv float64, dte int) float64 {
	T := math.Max(float64(dte)/365.0, 1.0/365.0)
	if iv <= 0 || spot <= 0 || breakeven <= 0 {
		return 0.5
	}

	d2 := (math.Log(spot/breakeven) - 0.5*iv*iv*T) / (iv * math.Sqrt(T))
	pop := normCDF(d2)

	return round4(math.Max(0.01, math.Min(0.99, pop)))
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
