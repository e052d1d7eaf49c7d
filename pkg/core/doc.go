// Package core provides a small, stable facade over pulsedcm's internal
// engine for external integrations.
//
// Example:
//
//	files, _ := core.ListFiles("./study", core.Filter{})
//	res, err := core.Run(ctx, core.Config{
//		Files:    files,
//		Severity: core.Moderate,
//		Action:   core.Replace,
//		Out:      "./deid",
//	})
//	if err != nil { /* handle */ }
//	fmt.Println(res.Succeeded(), "written")
package core
