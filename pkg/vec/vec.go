// Package vec содержит базовые операции над векторами эмбеддингов.
package vec

import "math"

// Norm возвращает L2-норму вектора.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Normalize нормализует вектор по L2 на месте. Нулевой вектор не изменяется.
func Normalize(v []float32) {
	n := Norm(v)
	if n == 0 {
		return
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / n)
	}
}

// IsNormalized проверяет, что L2-норма вектора равна 1 в пределах допуска tol.
func IsNormalized(v []float32, tol float64) bool {
	return math.Abs(Norm(v)-1.0) <= tol
}
