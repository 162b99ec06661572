package regime

import "math"

// 회귀에 사용하는 시차 범위. 하한 미만의 표본으로는 H를 추정하지 않는다.
const (
	minHurstLag = 2
	maxHurstLag = 20
	minSamples  = maxHurstLag
)

// HurstExponent estimates the Hurst exponent of a return series by
// rescaled-range analysis: 시차 2..20 각각에 대해 겹치지 않는 창들의
// 평균 R/S를 구하고, log(R/S)~log(lag) 회귀 기울기를 [0,1]로 클램프한다.
// 표본이 부족하면 랜덤워크에 해당하는 0.5를 반환한다.
func HurstExponent(returns []float64) float64 {
	if len(returns) < minSamples {
		return 0.5
	}

	var logLags, logRS []float64
	for lag := minHurstLag; lag <= maxHurstLag; lag++ {
		rs := averageRescaledRange(returns, lag)
		if rs <= 0 {
			continue
		}
		logLags = append(logLags, math.Log(float64(lag)))
		logRS = append(logRS, math.Log(rs))
	}
	if len(logLags) < 2 {
		return 0.5
	}

	slope := regressionSlope(logLags, logRS)
	return clamp01(slope)
}

// averageRescaledRange computes the mean R/S over the non-overlapping
// windows of the given length.
func averageRescaledRange(returns []float64, window int) float64 {
	var total float64
	var count int
	for start := 0; start+window <= len(returns); start += window {
		rs := rescaledRange(returns[start : start+window])
		if rs > 0 {
			total += rs
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// rescaledRange is R/S of a single window: 평균 제거 누적합의
// 범위(R)를 창의 표준편차(S)로 나눈 값.
func rescaledRange(window []float64) float64 {
	n := float64(len(window))

	var sum float64
	for _, v := range window {
		sum += v
	}
	mean := sum / n

	var cum, minCum, maxCum, sqSum float64
	for _, v := range window {
		dev := v - mean
		cum += dev
		if cum < minCum {
			minCum = cum
		}
		if cum > maxCum {
			maxCum = cum
		}
		sqSum += dev * dev
	}

	std := math.Sqrt(sqSum / n)
	if std == 0 {
		return 0
	}
	return (maxCum - minCum) / std
}

// regressionSlope is the least-squares slope of y on x
func regressionSlope(x, y []float64) float64 {
	n := float64(len(x))
	var sumX, sumY, sumXY, sumXX float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumXX += x[i] * x[i]
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0.5
	}
	return (n*sumXY - sumX*sumY) / denom
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
