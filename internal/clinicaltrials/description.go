package clinicaltrials

// ToolDescription tells the model what the ClinicalTrials.gov query API can
// do and how to phrase a request URL for it.
const ToolDescription = `The ClinicalTrials.gov API gives programmatic access to every posted study record on ClinicalTrials.gov. Queries are plain URLs that encode simple or complex search expressions and parameters.
There are three types of API calls:
| Full Studies | Returns all content of the first study record matching the query by default. With the min_rnk and max_rnk parameters set, returns up to 100 study records per query. |
| Study Fields | Returns the values of one or more fields from the study records matching the query. With the min_rnk and max_rnk parameters set, returns up to 1,000 study records per query. |
| Field Values | Returns the unique values of a single study field across all study records matching the query. |

You have access to the following fields:
LeadSponsorName, ArmGroupInterventionName, InterventionDescription, InterventionType, InterventionName, Phase, StudyFirstSubmitDate, CompletionDate, Condition, ConditionAncestorTerm, ConditionMeshTerm, OverallStatus, OutcomeMeasureTitle, OutcomeMeasureDescription, StudyFirstSubmitQCDate

Example Study Fields query (https://clinicaltrials.gov/api/gui/demo/simple_study_fields):
https://clinicaltrials.gov/api/query/study_fields?expr=NCT01836679+OR+NCT01480011&min_rnk=1&max_rnk=1000&fmt=json&fields=nctid,ArmGroupInterventionName

Example Field Values query (https://clinicaltrials.gov/api/gui/demo/simple_field_values):
https://clinicaltrials.gov/api/query/field_values?expr=heart+attack&field=Condition&fmt=xml

Example Full Studies query (https://clinicaltrials.gov/api/gui/demo/simple_full_study):
https://clinicaltrials.gov/api/query/full_studies?expr=heart+attack&min_rnk=1&max_rnk=&fmt=xml

The input to this tool is a single URL. The output is the raw response body.`
