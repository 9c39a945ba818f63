package models

import "time"

// AnalysisType identifies which engine produced a persisted record.
type AnalysisType string

const (
	TypeBusinessFeasibility AnalysisType = "business_feasibility"
	TypeDemandForecast      AnalysisType = "demand_forecast"
	TypeOptimization        AnalysisType = "optimization"
)

// Valid reports whether t is one of the known analysis types.
func (t AnalysisType) Valid() bool {
	switch t {
	case TypeBusinessFeasibility, TypeDemandForecast, TypeOptimization:
		return true
	}
	return false
}

// Severity tags a summary span so the presentation layer can style it.
// The engines never emit markup.
type Severity string

const (
	SeverityNeutral  Severity = "neutral"
	SeverityPositive Severity = "positive"
	SeverityNegative Severity = "negative"
)

// Span is a fragment of narrative text with a presentation hint.
type Span struct {
	Severity Severity `json:"severity"`
	Text     string   `json:"text"`
}

// ChartPoint is a single labeled value for charting.
type ChartPoint struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
}

// --- Business feasibility ---

// CostItem is one investment or operational cost line. Amount is supplied by
// the caller as quantity*price; the engine trusts it but requires it positive.
type CostItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Amount   float64 `json:"amount"`
}

type FeasibilityInput struct {
	BusinessName          string     `json:"businessName"`
	InvestmentCosts       []CostItem `json:"investmentCosts"`
	OperationalCosts      []CostItem `json:"operationalCosts"`
	ProductionCostPerUnit float64    `json:"productionCostPerUnit"`
	MonthlySalesVolume    float64    `json:"monthlySalesVolume"`
	Markup                float64    `json:"markup"`
	ProjectLifespan       int        `json:"projectLifespan"`
}

type FeasibilityResult struct {
	UnitCost         float64 `json:"unitCost"`
	SellingPrice     float64 `json:"sellingPrice"`
	BreakEvenUnits   float64 `json:"breakEvenUnits"`
	BreakEvenAmount  float64 `json:"breakEvenAmount"`
	MonthlyNetProfit float64 `json:"monthlyNetProfit"`
	ProfitMargin     float64 `json:"profitMargin"`
	PaybackPeriod    float64 `json:"paybackPeriod"`
	ROI              float64 `json:"roi"`
	Feasible         bool    `json:"feasible"`
	Summary          string  `json:"summary"`
	Spans            []Span  `json:"spans"`
}

// --- Demand forecasting ---

// ForecastMethod selects the projection algorithm. Engines switch on it
// exhaustively and reject unknown values before computing.
type ForecastMethod string

const (
	MethodSMA         ForecastMethod = "sma"
	MethodExponential ForecastMethod = "exponential"
)

func (m ForecastMethod) Valid() bool {
	switch m {
	case MethodSMA, MethodExponential:
		return true
	}
	return false
}

// HistoricalDemand is one observed period. Period labels are expected to end
// in a parseable integer; the next-period label increments that numeral.
type HistoricalDemand struct {
	ID     string  `json:"id"`
	Period string  `json:"period"`
	Demand float64 `json:"demand"`
}

type ForecastInput struct {
	ProductName      string             `json:"productName"`
	HistoricalDemand []HistoricalDemand `json:"historicalDemand"`
	Method           ForecastMethod     `json:"method"`
	SmoothingFactor  float64            `json:"smoothingFactor" default:"0.3"`
	PeriodLength     int                `json:"periodLength" default:"3"`
}

type ForecastPoint struct {
	Period   string  `json:"period"`
	Forecast float64 `json:"forecast"`
}

type ForecastAccuracy struct {
	MAPE float64 `json:"mape"`
	MAE  float64 `json:"mae"`
}

type ForecastChart struct {
	Historical []ChartPoint `json:"historical"`
	Forecast   []ChartPoint `json:"forecast"`
}

type ForecastResult struct {
	ProductName string           `json:"productName"`
	Forecasted  []ForecastPoint  `json:"forecasted"`
	Accuracy    ForecastAccuracy `json:"accuracy"`
	Chart       ForecastChart    `json:"chart"`
}

// --- Optimization ---

// OptimizationMode selects the objective the solver pursues.
type OptimizationMode string

const (
	ModeProfitMax OptimizationMode = "profit_max"
	ModeCostMin   OptimizationMode = "cost_min"
	ModeGoal      OptimizationMode = "goal_programming"
)

func (m OptimizationMode) Valid() bool {
	switch m {
	case ModeProfitMax, ModeCostMin, ModeGoal:
		return true
	}
	return false
}

// ConstraintSign relates the constraint expression to its right-hand side.
type ConstraintSign string

const (
	SignLE ConstraintSign = "<="
	SignGE ConstraintSign = ">="
	SignEQ ConstraintSign = "="
)

func (s ConstraintSign) Valid() bool {
	switch s {
	case SignLE, SignGE, SignEQ:
		return true
	}
	return false
}

// GoalDirection says whether a goal wants its expression above or below target.
type GoalDirection string

const (
	GoalMax GoalDirection = "max"
	GoalMin GoalDirection = "min"
)

// OptimizationVariable is a decision variable with a box constraint.
type OptimizationVariable struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	LowerBound float64 `json:"lowerBound"`
	UpperBound float64 `json:"upperBound"`
	Cost       float64 `json:"cost,omitempty"`
	Profit     float64 `json:"profit,omitempty"`
}

// VariableRef pairs a variable id with its coefficient in a linear expression.
type VariableRef struct {
	VariableID  string  `json:"variableId"`
	Coefficient float64 `json:"coefficient"`
}

type OptimizationConstraint struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Variables []VariableRef  `json:"variables"`
	RHS       float64        `json:"rhs"`
	Sign      ConstraintSign `json:"sign"`
}

type OptimizationGoal struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Target    float64       `json:"target"`
	Priority  float64       `json:"priority"`
	Direction GoalDirection `json:"direction"`
	Variables []VariableRef `json:"variables"`
}

type OptimizationInput struct {
	Name        string                   `json:"name"`
	Mode        OptimizationMode         `json:"type"`
	Variables   []OptimizationVariable   `json:"variables"`
	Constraints []OptimizationConstraint `json:"constraints"`
	Goals       []OptimizationGoal       `json:"goals,omitempty"`
}

type ResolvedVariable struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type ConstraintStatus struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Slack     float64 `json:"slack"`
	Satisfied bool    `json:"satisfied"`
}

type GoalStatus struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Achievement float64 `json:"achievement"`
	Deviation   float64 `json:"deviation"`
}

type OptimizationChart struct {
	Type string       `json:"type"`
	Data []ChartPoint `json:"data"`
}

// OptimizationResult carries the solve outcome. Infeasible problems are a
// normal outcome: Feasible is false, numeric fields are zeroed and the
// summary explains why. For goal programming ObjectiveValue is the weighted
// total deviation, so lower is better.
type OptimizationResult struct {
	Name           string             `json:"name"`
	Mode           OptimizationMode   `json:"type"`
	Feasible       bool               `json:"feasible"`
	ObjectiveValue float64            `json:"objectiveValue"`
	Variables      []ResolvedVariable `json:"variables"`
	Constraints    []ConstraintStatus `json:"constraints"`
	Goals          []GoalStatus       `json:"goals,omitempty"`
	Summary        string             `json:"summary"`
	Spans          []Span             `json:"spans"`
	Chart          OptimizationChart  `json:"chart"`
}

// --- Persistence ---

// AnalysisData is the payload stored for one computed analysis: the exact
// input that produced it and the engine's result, both immutable.
type AnalysisData struct {
	Input   interface{} `json:"input"`
	Results interface{} `json:"results"`
}

// AnalysisRecord is the persisted document shape.
type AnalysisRecord struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	Type      AnalysisType `json:"type"`
	Data      AnalysisData `json:"data"`
	CreatedAt time.Time    `json:"created_at"`
}
