package cyclecount_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invorya/cyclecount-api/internal/domain/cyclecount"
	"github.com/invorya/cyclecount-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func mfgDate() *time.Time {
	t := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	return &t
}

// baseLine devuelve una línea con saldos holgados para que los tests de matriz
// no disparen violaciones de negatividad.
func baseLine(movements ...entity.Movement) *entity.InventoryLine {
	return &entity.InventoryLine{
		SKUID:     "SKU001",
		BaseUnit:  entity.BaseUnitCase,
		Sellable:  d(100),
		Allocated: d(50),
		Damaged:   d(50),
		Expired:   d(50),
		OnRoute:   d(30),
		Movements: movements,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Matriz de campos requeridos por tipo
// ──────────────────────────────────────────────────────────────────────────────

// Cada tipo exige exactamente los campos de su fila en la matriz: con ambos
// campos presentes ningún tipo viola; al quitar el requerido aparece la
// violación correspondiente.
func TestValidateLine_MatrizCamposRequeridos(t *testing.T) {
	cases := []struct {
		tipo           string
		requiereMotivo bool
		requiereFecha  bool
	}{
		{entity.MovementSellableToExpired, true, true},
		{entity.MovementExpiredToSellable, false, true},
		{entity.MovementSellableToDamaged, true, false},
		{entity.MovementDamagedToSellable, true, false},
		{entity.MovementSellableToAllocated, false, false},
		{entity.MovementAllocatedToSellable, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.tipo, func(t *testing.T) {
			// Con todos los campos: limpio
			full := baseLine(entity.Movement{
				ID: "m1", Type: tc.tipo, Quantity: d(5), ReasonCode: "1", NewMfgDate: mfgDate(),
			})
			assert.Empty(t, cyclecount.ValidateLine(full), "con todos los campos no debe haber violaciones")

			// Sin motivo
			noReason := baseLine(entity.Movement{
				ID: "m1", Type: tc.tipo, Quantity: d(5), NewMfgDate: mfgDate(),
			})
			violations := cyclecount.ValidateLine(noReason)
			if tc.requiereMotivo {
				require.Len(t, violations, 1)
				assert.Contains(t, violations[0], "requiere reason_code")
			} else {
				assert.Empty(t, violations)
			}

			// Sin fecha de fabricación
			noDate := baseLine(entity.Movement{
				ID: "m1", Type: tc.tipo, Quantity: d(5), ReasonCode: "1",
			})
			violations = cyclecount.ValidateLine(noDate)
			if tc.requiereFecha {
				require.Len(t, violations, 1)
				assert.Contains(t, violations[0], "requiere new_mfg_date")
			} else {
				assert.Empty(t, violations)
			}
		})
	}
}

// Un movimiento puede violar varias reglas a la vez: todas se reportan, nunca
// se corta al primer error.
func TestValidateLine_AcumulaTodasLasViolaciones(t *testing.T) {
	line := baseLine(
		// Sin motivo ni fecha: dos violaciones
		entity.Movement{ID: "m1", Type: entity.MovementSellableToExpired, Quantity: d(5)},
		// Cantidad cero: una violación posicional
		entity.Movement{ID: "m2", Type: entity.MovementSellableToAllocated, Quantity: d(0)},
	)
	violations := cyclecount.ValidateLine(line)
	require.Len(t, violations, 3)
	assert.Contains(t, violations[0], "movimiento 1")
	assert.Contains(t, violations[0], "requiere reason_code")
	assert.Contains(t, violations[1], "requiere new_mfg_date")
	assert.Contains(t, violations[2], "movimiento 2")
	assert.Contains(t, violations[2], "mayor que cero")
}

func TestValidateLine_TipoDesconocido(t *testing.T) {
	line := baseLine(entity.Movement{ID: "m1", Type: "SELLABLE_TO_LOST", Quantity: d(5)})
	violations := cyclecount.ValidateLine(line)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0], "tipo desconocido")
}

func TestValidateLine_CantidadNegativa(t *testing.T) {
	line := baseLine(entity.Movement{
		ID: "m1", Type: entity.MovementSellableToAllocated, Quantity: d(-3),
	})
	violations := cyclecount.ValidateLine(line)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0], "movimiento 1")
	assert.Contains(t, violations[0], "mayor que cero")
}

// ──────────────────────────────────────────────────────────────────────────────
// Negatividad de saldos resultantes
// ──────────────────────────────────────────────────────────────────────────────

// La violación de negatividad nombra el saldo que quedaría en rojo.
func TestValidateLine_SaldoNegativoNombraElEstado(t *testing.T) {
	line := &entity.InventoryLine{
		SKUID:    "SKU002",
		Sellable: d(10),
		Movements: []entity.Movement{
			{ID: "m1", Type: entity.MovementSellableToDamaged, Quantity: d(25), ReasonCode: "1"},
		},
	}
	violations := cyclecount.ValidateLine(line)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0], "sellable")
	assert.Contains(t, violations[0], "-15")
}

// Dos movimientos que individualmente caben pero juntos agotan el saldo: la
// negatividad se evalúa sobre el efecto acumulado.
func TestValidateLine_NegatividadSobreEfectoAcumulado(t *testing.T) {
	line := &entity.InventoryLine{
		SKUID:    "SKU003",
		Sellable: d(10),
		Movements: []entity.Movement{
			{ID: "m1", Type: entity.MovementSellableToDamaged, Quantity: d(6), ReasonCode: "1"},
			{ID: "m2", Type: entity.MovementSellableToAllocated, Quantity: d(6)},
		},
	}
	violations := cyclecount.ValidateLine(line)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0], "sellable")
}

// Un movimiento inverso puede rehabilitar el saldo: expired->sellable primero
// deja espacio para mover más de lo que había en sellable al inicio.
func TestValidateLine_MovimientoInversoRehabilita(t *testing.T) {
	line := &entity.InventoryLine{
		SKUID:    "SKU004",
		Sellable: d(5),
		Expired:  d(20),
		Movements: []entity.Movement{
			{ID: "m1", Type: entity.MovementExpiredToSellable, Quantity: d(10), NewMfgDate: mfgDate()},
			{ID: "m2", Type: entity.MovementSellableToDamaged, Quantity: d(12), ReasonCode: "2"},
		},
	}
	assert.Empty(t, cyclecount.ValidateLine(line))
}

// ──────────────────────────────────────────────────────────────────────────────
// Invariante de on-hand
// ──────────────────────────────────────────────────────────────────────────────

// Cualquier secuencia de movimientos conserva el on-hand (suma de los cuatro
// saldos) y nunca toca on-route.
func TestApplyMovements_ConservaOnHand(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	types := []string{
		entity.MovementSellableToExpired,
		entity.MovementExpiredToSellable,
		entity.MovementSellableToDamaged,
		entity.MovementDamagedToSellable,
		entity.MovementSellableToAllocated,
		entity.MovementAllocatedToSellable,
	}

	for iter := 0; iter < 50; iter++ {
		line := &entity.InventoryLine{
			SKUID:     "SKU-RND",
			Sellable:  d(rng.Int63n(500)),
			Allocated: d(rng.Int63n(500)),
			Damaged:   d(rng.Int63n(500)),
			Expired:   d(rng.Int63n(500)),
			OnRoute:   d(rng.Int63n(500)),
		}
		onHand := line.InventoryOnHand()
		onRoute := line.OnRoute

		n := 1 + rng.Intn(10)
		for i := 0; i < n; i++ {
			line.Movements = append(line.Movements, entity.Movement{
				Type:     types[rng.Intn(len(types))],
				Quantity: d(1 + rng.Int63n(100)),
			})
		}

		net := cyclecount.ApplyMovements(line)
		assert.True(t, net.Sum().Equal(onHand),
			"on-hand debe conservarse: inicial %s, resultante %s", onHand, net.Sum())
		assert.True(t, line.OnRoute.Equal(onRoute), "on-route no debe cambiar")
	}
}

func TestApplyMovements_EfectoPorTipo(t *testing.T) {
	line := baseLine(
		entity.Movement{ID: "m1", Type: entity.MovementSellableToExpired, Quantity: d(10)},
		entity.Movement{ID: "m2", Type: entity.MovementDamagedToSellable, Quantity: d(4)},
	)
	net := cyclecount.ApplyMovements(line)
	assert.True(t, net.Sellable.Equal(d(94)), "sellable: 100 - 10 + 4")
	assert.True(t, net.Expired.Equal(d(60)), "expired: 50 + 10")
	assert.True(t, net.Damaged.Equal(d(46)), "damaged: 50 - 4")
	assert.True(t, net.Allocated.Equal(d(50)), "allocated sin cambios")
}

// ──────────────────────────────────────────────────────────────────────────────
// Totales
// ──────────────────────────────────────────────────────────────────────────────

func TestTotalAdjustments_SumaValoresAbsolutos(t *testing.T) {
	s := &entity.CycleCountSession{
		Items: []entity.InventoryLine{
			*baseLine(
				entity.Movement{Type: entity.MovementSellableToDamaged, Quantity: d(5)},
				entity.Movement{Type: entity.MovementExpiredToSellable, Quantity: d(3)},
			),
			{
				SKUID: "SKU002",
				Movements: []entity.Movement{
					{Type: entity.MovementSellableToAllocated, Quantity: d(7)},
				},
			},
		},
	}
	assert.True(t, cyclecount.TotalAdjustments(s).Equal(d(15)))
}

func TestTotalAdjustments_SesionSinMovimientos(t *testing.T) {
	s := &entity.CycleCountSession{Items: []entity.InventoryLine{*baseLine()}}
	assert.True(t, cyclecount.TotalAdjustments(s).IsZero())
}
