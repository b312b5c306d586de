package scenario

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

const matchTypeName = "match"

// Scenario is a loaded match script: an ordered list of steps.
type Scenario struct {
	Name  string
	Steps []Step
}

// Step is one scripted action or expectation.
type Step struct {
	Kind string
	Args map[string]any
}

// LoadScenarioFromFile runs a Lua script and returns the Match it builds.
//
// The script must return the value created by Match.new.
func LoadScenarioFromFile(path string) (*Scenario, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerLuaTypes(state)

	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}

	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return Match")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, fmt.Errorf("scenario script returned invalid Match")
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scenario, nil
}

func registerLuaTypes(state *lua.State) {
	lua.NewMetaTable(state, matchTypeName)
	state.NewTable()
	lua.SetFunctions(state, matchMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)

	state.NewTable()
	lua.SetFunctions(state, matchConstructor, 0)
	state.SetGlobal("Match")
}

var matchConstructor = []lua.RegistryFunction{
	{Name: "new", Function: matchNew},
}

func matchNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	state.PushUserData(&Scenario{Name: name})
	lua.SetMetaTableNamed(state, matchTypeName)
	return 1
}

var matchMethods = []lua.RegistryFunction{
	{Name: "capacity", Function: matchCapacity},
	{Name: "round", Function: matchRound},
	{Name: "play", Function: matchPlay},
	{Name: "expect_candidates", Function: matchExpectCandidates},
	{Name: "expect_decision", Function: matchExpectDecision},
	{Name: "expect_length", Function: matchExpectLength},
	{Name: "expect_tally", Function: matchExpectTally},
	{Name: "expect_capacity_exceeded", Function: matchExpectCapacityExceeded},
}

func matchCapacity(state *lua.State) int {
	scenario := checkScenario(state)
	capacity := lua.CheckInteger(state, 2)
	if len(scenario.Steps) > 0 {
		lua.Errorf(state, "capacity must be set before any other step")
	}
	appendStep(scenario, "capacity", map[string]any{"capacity": capacity})
	state.PushValue(1)
	return 1
}

func matchRound(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	for _, side := range []string{"home", "away"} {
		if _, ok := data[side].(string); !ok {
			lua.Errorf(state, "round %s move is required", side)
		}
	}
	appendStep(scenario, "round", data)
	state.PushValue(1)
	return 1
}

func matchPlay(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "play", optionalTable(state, 2))
	state.PushValue(1)
	return 1
}

func matchExpectCandidates(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	_, hasIncludes := data["includes"]
	_, hasExact := data["exact"]
	if !hasIncludes && !hasExact {
		lua.Errorf(state, "expect_candidates needs includes or exact")
	}
	appendStep(scenario, "expect_candidates", data)
	state.PushValue(1)
	return 1
}

func matchExpectDecision(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	if _, ok := data["policy"].(string); !ok {
		lua.Errorf(state, "expect_decision policy is required")
	}
	appendStep(scenario, "expect_decision", data)
	state.PushValue(1)
	return 1
}

func matchExpectLength(state *lua.State) int {
	scenario := checkScenario(state)
	length := lua.CheckInteger(state, 2)
	appendStep(scenario, "expect_length", map[string]any{"length": length})
	state.PushValue(1)
	return 1
}

func matchExpectTally(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	appendStep(scenario, "expect_tally", tableToMap(state, 2))
	state.PushValue(1)
	return 1
}

func matchExpectCapacityExceeded(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "expect_capacity_exceeded", optionalTable(state, 2))
	state.PushValue(1)
	return 1
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, matchTypeName)
	if scenario, ok := ud.(*Scenario); ok && scenario != nil {
		return scenario
	}
	lua.ArgumentError(state, 1, "match expected")
	return nil
}

func appendStep(scenario *Scenario, kind string, data map[string]any) int {
	if scenario == nil {
		return -1
	}
	if data == nil {
		data = map[string]any{}
	}
	scenario.Steps = append(scenario.Steps, Step{Kind: kind, Args: data})
	return len(scenario.Steps) - 1
}

func optionalTable(state *lua.State, index int) map[string]any {
	if state.IsNoneOrNil(index) || state.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}
	return tableToMap(state, index)
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	default:
		return nil
	}
}

// tableToGo returns a []any for a sequence table and a map otherwise.
func tableToGo(state *lua.State, index int) any {
	index = state.AbsIndex(index)
	isArray := true
	maxIndex := 0
	count := 0
	state.PushNil()
	for state.Next(index) {
		if isArray {
			if state.TypeOf(-2) != lua.TypeNumber {
				isArray = false
			} else if idx, ok := state.ToInteger(-2); ok && idx > 0 {
				count++
				if idx > maxIndex {
					maxIndex = idx
				}
			} else {
				isArray = false
			}
		}
		state.Pop(1)
	}

	if isArray && count > 0 && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			state.RawGetInt(index, i)
			result = append(result, luaToGo(state, -1))
			state.Pop(1)
		}
		return result
	}
	return tableToMap(state, index)
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 {
		return int(value)
	}
	return value
}
