// Package config loads patsub rules files.
//
// A rules file is a YAML document of kind Configuration. It selects the regex
// engine and lists the rules to apply, in order:
//
//	apiVersion: patsub.jacobcolvin.com/v1beta1
//	kind: Configuration
//	engine: re2
//	rules:
//	  - pattern: "{y:[0-9]{4}}-{m:[0-9]{2}}-{d:[0-9]{2}} {lvl}"
//	    template: "{d}/{m}/{y}: {lvl}"
//
// Files are validated against a JSON schema generated from [Config], and
// errors point at the offending YAML path.
package config
