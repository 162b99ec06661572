package regime

import (
	"math"
	"sort"
)

const (
	hmmMinSamples    = 50  // 이보다 적은 수익률로는 학습하지 않음
	hmmRetrainEvery  = 100 // 새 수익률 N개마다 재학습
	hmmPredictWindow = 10  // 상태 추정에 쓰는 최근 수익률 수
	hmmEMIterations  = 20
	hmmMinVariance   = 1e-12
)

// gaussianHMM is a two-state hidden Markov model with Gaussian
// emissions, fit by Baum-Welch over the return magnitude series.
// 평균 진폭이 큰 상태가 고변동성 국면이다.
type gaussianHMM struct {
	Means   [2]float64    `json:"means"`
	Vars    [2]float64    `json:"vars"`
	Trans   [2][2]float64 `json:"trans"`
	Initial [2]float64    `json:"initial"`
}

// fitHMM trains a two-state model on the observations, nil when the
// series is too short.
func fitHMM(obs []float64) *gaussianHMM {
	if len(obs) < hmmMinSamples {
		return nil
	}

	m := initialModel(obs)
	for iter := 0; iter < hmmEMIterations; iter++ {
		if !m.emStep(obs) {
			break
		}
	}
	return m
}

// initialModel seeds the EM from a rank split of the observations so
// the two states start in distinct volatility halves.
func initialModel(obs []float64) *gaussianHMM {
	var mean float64
	for _, v := range obs {
		mean += v
	}
	mean /= float64(len(obs))

	var sqSum float64
	for _, v := range obs {
		sqSum += (v - mean) * (v - mean)
	}
	std := math.Sqrt(sqSum / float64(len(obs)))

	sorted := append([]float64(nil), obs...)
	sort.Float64s(sorted)
	low := sorted[:len(sorted)/2]
	high := sorted[len(sorted)/2:]

	m := &gaussianHMM{
		Trans:   [2][2]float64{{0.9, 0.1}, {0.1, 0.9}},
		Initial: [2]float64{0.5, 0.5},
	}
	m.Means[0], m.Vars[0] = momentsOf(low, mean, std*std*0.5)
	m.Means[1], m.Vars[1] = momentsOf(high, mean, std*std*2)
	return m
}

func momentsOf(values []float64, fallbackMean, fallbackVar float64) (float64, float64) {
	if len(values) < 2 {
		return fallbackMean, math.Max(fallbackVar, hmmMinVariance)
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var sqSum float64
	for _, v := range values {
		sqSum += (v - mean) * (v - mean)
	}
	return mean, math.Max(sqSum/float64(len(values)), hmmMinVariance)
}

func (m *gaussianHMM) density(state int, x float64) float64 {
	v := m.Vars[state]
	diff := x - m.Means[state]
	return math.Exp(-diff*diff/(2*v)) / math.Sqrt(2*math.Pi*v)
}

// forward runs the scaled forward pass, returning per-step state
// probabilities and scale factors.
func (m *gaussianHMM) forward(obs []float64) ([][2]float64, []float64) {
	n := len(obs)
	alpha := make([][2]float64, n)
	scales := make([]float64, n)

	for j := 0; j < 2; j++ {
		alpha[0][j] = m.Initial[j] * m.density(j, obs[0])
	}
	scales[0] = normalizePair(&alpha[0])

	for t := 1; t < n; t++ {
		for j := 0; j < 2; j++ {
			var sum float64
			for i := 0; i < 2; i++ {
				sum += alpha[t-1][i] * m.Trans[i][j]
			}
			alpha[t][j] = sum * m.density(j, obs[t])
		}
		scales[t] = normalizePair(&alpha[t])
	}
	return alpha, scales
}

// emStep performs one Baum-Welch iteration, false when the forward
// pass degenerates (어떤 상태도 관측을 설명하지 못하는 경우).
func (m *gaussianHMM) emStep(obs []float64) bool {
	n := len(obs)
	alpha, scales := m.forward(obs)
	for _, s := range scales {
		if s == 0 {
			return false
		}
	}

	// 스케일된 backward 패스
	beta := make([][2]float64, n)
	beta[n-1] = [2]float64{1, 1}
	for t := n - 2; t >= 0; t-- {
		for i := 0; i < 2; i++ {
			var sum float64
			for j := 0; j < 2; j++ {
				sum += m.Trans[i][j] * m.density(j, obs[t+1]) * beta[t+1][j]
			}
			beta[t][i] = sum / scales[t+1]
		}
	}

	// 상태 점유 확률과 전이 기대값
	gamma := make([][2]float64, n)
	for t := 0; t < n; t++ {
		gamma[t][0] = alpha[t][0] * beta[t][0]
		gamma[t][1] = alpha[t][1] * beta[t][1]
		normalizePair(&gamma[t])
	}

	var xiSum [2][2]float64
	for t := 0; t < n-1; t++ {
		var total float64
		var xi [2][2]float64
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				xi[i][j] = alpha[t][i] * m.Trans[i][j] * m.density(j, obs[t+1]) * beta[t+1][j]
				total += xi[i][j]
			}
		}
		if total == 0 {
			continue
		}
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				xiSum[i][j] += xi[i][j] / total
			}
		}
	}

	// 파라미터 갱신
	m.Initial = gamma[0]
	for i := 0; i < 2; i++ {
		var occupancy float64
		for t := 0; t < n-1; t++ {
			occupancy += gamma[t][i]
		}
		if occupancy > 0 {
			for j := 0; j < 2; j++ {
				m.Trans[i][j] = xiSum[i][j] / occupancy
			}
		}

		var weight, mean float64
		for t := 0; t < n; t++ {
			weight += gamma[t][i]
			mean += gamma[t][i] * obs[t]
		}
		if weight == 0 {
			continue
		}
		mean /= weight

		var variance float64
		for t := 0; t < n; t++ {
			variance += gamma[t][i] * (obs[t] - mean) * (obs[t] - mean)
		}
		m.Means[i] = mean
		m.Vars[i] = math.Max(variance/weight, hmmMinVariance)
	}
	return true
}

// PredictState returns the most likely current state given the recent
// observations.
func (m *gaussianHMM) PredictState(recent []float64) int {
	if len(recent) == 0 {
		return 0
	}
	alpha, _ := m.forward(recent)
	last := alpha[len(recent)-1]
	if last[1] > last[0] {
		return 1
	}
	return 0
}

// HighVolState is the state index with the larger mean magnitude
func (m *gaussianHMM) HighVolState() int {
	if m.Means[1] > m.Means[0] {
		return 1
	}
	return 0
}

// absValues maps returns to their magnitudes. 변동성 상태는 방향이
// 아니라 진폭으로 갈린다.
func absValues(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Abs(v)
	}
	return out
}

// normalizePair scales the pair to sum to 1 and returns the original sum
func normalizePair(p *[2]float64) float64 {
	sum := p[0] + p[1]
	if sum > 0 {
		p[0] /= sum
		p[1] /= sum
	}
	return sum
}
